package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/diagnosis/consult-relay/internal/workflow"
)

type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

func (p *prompter) say(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// ask reads one line. An empty answer falls back to def.
func (p *prompter) ask(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}

	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}

func (p *prompter) confirm(label string) (bool, error) {
	answer, err := p.ask(label+" [y/N]", "")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

func runSignup(ctx context.Context, ctrl *workflow.Controller, p *prompter) error {
	var email string
	for {
		var err error
		if email, err = p.ask("Email", email); err != nil {
			return err
		}
		if err := ctrl.RequestCode(ctx, email); err != nil {
			if !reportable(err) {
				return err
			}
			p.say("⚠️  %v", err)
			continue
		}
		p.say("📧 A 6-digit code was sent to %s.", email)

		if err := completeSignup(ctx, ctrl, p, email); err != nil {
			if errors.Is(err, workflow.ErrCodeExpired) {
				p.say("⚠️  %v", err)
				continue
			}
			return err
		}

		user, _ := ctrl.Session().User()
		p.say("✅ Welcome, %s! You're all signed up.", user.Name)
		return nil
	}
}

// completeSignup keeps prompting until the signup succeeds or the code expires.
func completeSignup(ctx context.Context, ctrl *workflow.Controller, p *prompter, email string) error {
	var name string
	for {
		var err error
		if name, err = p.ask("Full name", name); err != nil {
			return err
		}
		password, err := p.ask("Password", "")
		if err != nil {
			return err
		}
		code, err := p.ask("Verification code", "")
		if err != nil {
			return err
		}

		err = ctrl.CompleteSignup(ctx, name, email, password, code)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, workflow.ErrCodeExpired):
			return err
		case reportable(err):
			p.say("⚠️  %v", err)
		default:
			return err
		}
	}
}

func runBooking(ctx context.Context, ctrl *workflow.Controller, p *prompter) error {
	draft, err := ctrl.OpenBooking(ctx)
	if err != nil {
		return err
	}

	for {
		if draft, err = askBooking(ctrl, p, draft); err != nil {
			return err
		}

		id, err := ctrl.SubmitBooking(ctx, draft)
		switch {
		case err == nil:
			p.say("✅ Booking confirmed! Reference: %s", id)
			p.say("We will get back to you soon.")
			return nil
		case errors.Is(err, workflow.ErrDeliveryFailed):
			p.say("❌ Could not send your booking: %v", err)
			retry, cerr := p.confirm("Your details are kept. Try again?")
			if cerr != nil || !retry {
				ctrl.Session().CloseBooking()
				return err
			}
		case reportable(err):
			p.say("⚠️  %v", err)
		default:
			return err
		}
		draft = ctrl.Session().Draft()
	}
}

func askBooking(ctrl *workflow.Controller, p *prompter, draft workflow.BookingFields) (workflow.BookingFields, error) {
	var err error
	fields := []struct {
		label string
		dst   *string
	}{
		{"Full name", &draft.Name},
		{"Email", &draft.Email},
		{"Phone", &draft.Phone},
		{"Gender", &draft.Gender},
		{"Country", &draft.Country},
	}
	for _, f := range fields {
		if *f.dst, err = p.ask(f.label, *f.dst); err != nil {
			return draft, err
		}
	}

	for {
		date, err := p.ask("Date (YYYY-MM-DD, weekends only)", draft.Date)
		if err != nil {
			return draft, err
		}
		if err := ctrl.ChangeMeetingDate(date); err != nil {
			p.say("⚠️  %v", err)
			draft.Date = ""
			continue
		}
		draft.Date = date
		break
	}

	if draft.Time, err = p.ask("Time (HH:MM)", draft.Time); err != nil {
		return draft, err
	}

	services, err := p.ask("Services (comma separated)", strings.Join(draft.Services, ", "))
	if err != nil {
		return draft, err
	}
	draft.Services = strings.Split(services, ",")

	return draft, nil
}

func reportable(err error) bool {
	var verr *workflow.ValidationError
	return errors.As(err, &verr) || errors.Is(err, workflow.ErrDeliveryFailed)
}
