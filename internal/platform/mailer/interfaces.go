package mailer

import "context"

// Message is a single outgoing email. The sender address is fixed per mailer;
// FromName lets each mail kind present its own display name.
type Message struct {
	ToEmail      string
	ToName       string
	FromName     string
	ReplyToEmail string
	ReplyToName  string
	Subject      string
	Text         string
	HTML         string
}

type Service interface {
	// Send delivers msg and returns the provider message id when it has one.
	Send(ctx context.Context, msg Message) (string, error)
}
