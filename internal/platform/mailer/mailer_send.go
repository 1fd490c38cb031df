// internal/platform/mailer/mailer_send.go
package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mailersend/mailersend-go"
)

type Mailer struct {
	client    *mailersend.Mailersend
	fromEmail string
	Enabled   bool
}

func NewMailer(apiKey, fromEmail string) *Mailer {
	m := &Mailer{
		Enabled:   apiKey != "" && fromEmail != "",
		fromEmail: fromEmail,
	}
	if m.Enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}
	return m
}

func (m *Mailer) Send(ctx context.Context, msg Message) (string, error) {
	if !m.Enabled {
		return "", errors.New("mailer disabled (missing MAILERSEND_API_KEY or SENDER_EMAIL)")
	}

	email := m.client.Email.NewMessage()
	email.SetFrom(mailersend.From{Name: msg.FromName, Email: m.fromEmail})
	email.SetRecipients([]mailersend.Recipient{{Name: msg.ToName, Email: msg.ToEmail}})
	email.SetSubject(msg.Subject)
	if msg.ReplyToEmail != "" {
		email.SetReplyTo(mailersend.ReplyTo{Name: msg.ReplyToName, Email: msg.ReplyToEmail})
	}
	if strings.TrimSpace(msg.Text) != "" {
		email.SetText(msg.Text)
	}
	if strings.TrimSpace(msg.HTML) != "" {
		email.SetHTML(msg.HTML)
	}

	res, err := m.client.Email.Send(ctx, email)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return "", fmt.Errorf("mailersend error: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	// MailerSend uses X-Message-Id
	return res.Header.Get("X-Message-Id"), nil
}
