package domain

import "context"

// ApplicationRepository defines the persistence contract for applications.
// Reads return the application joined with its renter and property summaries.
type ApplicationRepository interface {
	Create(ctx context.Context, app Application) error
	GetByID(ctx context.Context, id string) (Application, error)
	FindByRenterAndProperty(ctx context.Context, renterID, propertyID string) (Application, error)
	List(ctx context.Context, filter ListFilter) ([]Application, error)
	// Update writes app only if the stored version still equals app.Version,
	// bumping it by one. Otherwise it returns ErrStaleApplication.
	Update(ctx context.Context, app Application) error
	// Delete removes the application and its legal documents.
	Delete(ctx context.Context, id string) error
}

// ListFilter holds optional criteria for listing applications.
type ListFilter struct {
	RenterID   string
	PropertyID string
	OwnerID    string
	Status     *Status
	Limit      int
	Offset     int
}

// PropertyRepository is the slice of property storage the lifecycle needs.
type PropertyRepository interface {
	GetByID(ctx context.Context, id string) (Property, error)
	SetPublicationStatus(ctx context.Context, id string, status PublicationStatus) error
}

// PaymentRepository stores generated payments.
type PaymentRepository interface {
	Create(ctx context.Context, payment Payment) error
	ListByRelated(ctx context.Context, relatedType, relatedID string) ([]Payment, error)
}

// ReviewRepository stores seeded reviews.
type ReviewRepository interface {
	CreateMany(ctx context.Context, reviews []Review) error
	ListByApplication(ctx context.Context, applicationID string) ([]Review, error)
	ListByReceiver(ctx context.Context, userID string) ([]Review, error)
}

// UserRepository resolves user accounts.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (User, error)
}

// NotificationRepository is the per-user notification inbox.
type NotificationRepository interface {
	Create(ctx context.Context, n Notification) error
	ListByRecipient(ctx context.Context, userID string) ([]Notification, error)
}

// Store groups the repositories behind one connection or transaction.
type Store interface {
	Applications() ApplicationRepository
	Properties() PropertyRepository
	Payments() PaymentRepository
	Reviews() ReviewRepository
	Users() UserRepository
	Notifications() NotificationRepository

	// InTx runs fn against a Store bound to a single transaction. The
	// transaction commits if fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(tx Store) error) error
}

// TransitionValidator decides whether a role class may perform a status change.
type TransitionValidator interface {
	Validate(ctx context.Context, current, requested Status, class RoleClass) error
}

// Notifier delivers best-effort notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
