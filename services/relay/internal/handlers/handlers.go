package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/diagnosis/consult-relay/internal/domain"
	"github.com/diagnosis/consult-relay/internal/http/response"
	"github.com/diagnosis/consult-relay/pkg/config"
	"github.com/diagnosis/consult-relay/pkg/logger"
	"github.com/diagnosis/consult-relay/services/relay/internal/service"
)

type Handlers struct {
	relay  service.RelayService
	config *config.Config
	now    func() time.Time
}

func New(relay service.RelayService, config *config.Config) *Handlers {
	return &Handlers{
		relay:  relay,
		config: config,
		now:    time.Now,
	}
}

// Register mounts every relay route on r, including the 404 fallbacks.
func (h *Handlers) Register(r chi.Router) {
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.NotFound)

	r.Get("/", h.Root)
	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/send-verification", h.SendVerification)
		r.Post("/send-booking", h.SendBooking)
		r.Post("/send-email", h.SendEmail)
	})
}

type rootRes struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, rootRes{
		Success: true,
		Message: "🚀 " + h.config.Email.Brand + " Backend API is running!",
		Version: h.config.App.Version,
		Endpoints: map[string]string{
			"root":         "GET /",
			"health":       "GET /health",
			"sendEmail":    "POST /api/send-email",
			"verification": "POST /api/send-verification",
			"booking":      "POST /api/send-booking",
		},
	})
}

type healthRes struct {
	Success   bool   `json:"success"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, healthRes{
		Success:   true,
		Status:    "healthy",
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}

func (h *Handlers) SendVerification(w http.ResponseWriter, r *http.Request) {
	var req domain.VerificationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	h.sendVerification(w, r, &req)
}

func (h *Handlers) sendVerification(w http.ResponseWriter, r *http.Request, req *domain.VerificationReq) {
	if err := h.relay.SendVerification(r.Context(), req); err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			response.BadRequest(w, "Email and code are required")
			return
		}
		response.DeliveryFailed(w, "Failed to send verification email", err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, domain.MessageRes{
		Success: true,
		Message: "Verification email sent successfully",
	})
}

func (h *Handlers) SendBooking(w http.ResponseWriter, r *http.Request) {
	var req domain.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	h.sendBooking(w, r, &req)
}

func (h *Handlers) sendBooking(w http.ResponseWriter, r *http.Request, req *domain.BookingRequest) {
	if req == nil {
		response.BadRequest(w, "Invalid booking data")
		return
	}

	bookingID, err := h.relay.SendBooking(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			response.BadRequest(w, "Invalid booking data")
			return
		}
		response.DeliveryFailed(w, "Failed to send booking email", err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, domain.BookingRes{
		Success:   true,
		Message:   "Booking email sent successfully",
		BookingID: bookingID,
	})
}

// SendEmail dispatches on the envelope type to the dedicated handlers.
func (h *Handlers) SendEmail(w http.ResponseWriter, r *http.Request) {
	var req domain.SendEmailReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	switch req.Type {
	case domain.EmailTypeVerification:
		h.sendVerification(w, r, &domain.VerificationReq{Email: req.To, Code: req.Code})
	case domain.EmailTypeBooking:
		h.sendBooking(w, r, req.Data)
	default:
		logger.WarnContext(r.Context(), "Unknown email type", "type", req.Type)
		response.BadRequest(w, "Invalid email type")
	}
}

func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	response.NotFound(w, r.URL.Path)
}
