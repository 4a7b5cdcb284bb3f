package ports

import "context"

// Mail is one outbound notification.
type Mail struct {
	From    string
	To      string
	Subject string
	Body    string
}

// NotificationSender delivers mail. Callers treat failures as best-effort.
type NotificationSender interface {
	Send(ctx context.Context, m Mail) error
}
