package river

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/habitta/internal/domain"
)

// Compile-time check: Notifier implements domain.Notifier.
var _ domain.Notifier = (*Notifier)(nil)

// NotificationJobArgs carries one notification through the queue. It is a
// complete snapshot, so the worker never needs to re-read the application.
type NotificationJobArgs struct {
	ID               string    `json:"id"`
	RecipientID      string    `json:"recipient_id"`
	ApplicationID    string    `json:"application_id"`
	NotificationKind string    `json:"kind"`
	Title            string    `json:"title"`
	Body             string    `json:"body"`
	CreatedAt        time.Time `json:"created_at"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (NotificationJobArgs) Kind() string { return "application.notification" }

func (a NotificationJobArgs) notification() domain.Notification {
	return domain.Notification{
		ID:            a.ID,
		RecipientID:   a.RecipientID,
		ApplicationID: a.ApplicationID,
		Kind:          domain.NotificationKind(a.NotificationKind),
		Title:         a.Title,
		Body:          a.Body,
		CreatedAt:     a.CreatedAt,
	}
}

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Notifier implements domain.Notifier by enqueuing River jobs.
type Notifier struct {
	client *Client
}

// NewNotifier creates a notifier backed by the given River client.
func NewNotifier(client *Client) *Notifier {
	return &Notifier{client: client}
}

// Notify enqueues n for asynchronous delivery.
func (p *Notifier) Notify(ctx context.Context, n domain.Notification) error {
	_, err := p.client.Insert(ctx, NotificationJobArgs{
		ID:               n.ID,
		RecipientID:      n.RecipientID,
		ApplicationID:    n.ApplicationID,
		NotificationKind: string(n.Kind),
		Title:            n.Title,
		Body:             n.Body,
		CreatedAt:        n.CreatedAt,
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing notification job: %w", err)
	}
	return nil
}
