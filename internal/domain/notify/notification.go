package notify

import "context"

// Notification is a transient toast shown to a visitor.
type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Notifier port. Implementations display the message for a short time and
// then drop it.
type Notifier interface {
	Notify(ctx context.Context, visitor string, n Notification) error
}
