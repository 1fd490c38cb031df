package domain

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/diagnosis/consult-relay/internal/utils"
)

const (
	EmailTypeVerification = "verification"
	EmailTypeBooking      = "booking"
)

type VerificationReq struct {
	Email string `json:"email" validate:"required"`
	Code  string `json:"code" validate:"required"`
}

func (r *VerificationReq) Normalize() {
	r.Email = utils.NormalizeEmail(r.Email)
	r.Code = strings.TrimSpace(r.Code)
}

func (r *VerificationReq) Validate() error {
	return validateStruct(r)
}

// SendEmailReq is the combined envelope accepted by /api/send-email.
type SendEmailReq struct {
	Type string          `json:"type"`
	To   string          `json:"to"`
	Code string          `json:"code"`
	Data *BookingRequest `json:"data"`
}

type MessageRes struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validator exposes the shared instance so other packages validate with the same field naming.
func Validator() *validator.Validate {
	return validate
}

// FieldError carries the JSON name of the first field that failed validation.
type FieldError struct {
	Field string
	Tag   string
}

func (e *FieldError) Error() string {
	return e.Field + " is " + e.Tag
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &FieldError{Field: verrs[0].Field(), Tag: verrs[0].Tag()}
	}
	return err
}
