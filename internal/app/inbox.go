package app

import (
	"context"

	"github.com/neomorfeo/habitta/internal/domain"
)

// InboxService reads delivered notifications.
type InboxService struct {
	store domain.Store
}

// NewInboxService creates an InboxService over store.
func NewInboxService(store domain.Store) *InboxService {
	return &InboxService{store: store}
}

// List returns actor's notifications, newest first.
func (s *InboxService) List(ctx context.Context, actor domain.Actor) ([]domain.Notification, error) {
	return s.store.Notifications().ListByRecipient(ctx, actor.ID)
}
