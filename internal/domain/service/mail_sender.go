package service

import "context"

// MailMessage is a single transactional email.
type MailMessage struct {
	ToEmail  string
	ToName   string
	Subject  string
	HTMLBody string
}

// MailSender delivers transactional email. Implementations should treat
// delivery as best effort; callers decide whether a failure is fatal.
type MailSender interface {
	Send(ctx context.Context, msg MailMessage) error
}
