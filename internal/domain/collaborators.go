package domain

import "time"

// PublicationStatus is the listing state of a property.
type PublicationStatus string

const (
	PublicationPublished PublicationStatus = "published"
	PublicationRented    PublicationStatus = "rented"
	PublicationDisabled  PublicationStatus = "disabled"
	PublicationExpired   PublicationStatus = "expired"
	PublicationDeleted   PublicationStatus = "deleted"
)

// Property is a rentable listing. The lifecycle core only reads it and flips
// its publication status.
type Property struct {
	ID                string
	OwnerID           string
	Title             string
	Address           string
	Price             float64
	PublicationStatus PublicationStatus
	Images            []string
	CreatedAt         time.Time
}

// Summary returns the projection joined onto applications.
func (p Property) Summary() PropertySummary {
	s := PropertySummary{
		ID:      p.ID,
		OwnerID: p.OwnerID,
		Title:   p.Title,
		Address: p.Address,
		Price:   p.Price,
	}
	if len(p.Images) > 0 {
		s.Image = p.Images[0]
	}
	return s
}

// User is a platform account.
type User struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Role      Role
	PushToken string
	CreatedAt time.Time
}

// Payment related types and statuses used by the lifecycle core.
const (
	PaymentRelatedRent = "rent"
	PaymentPending     = "pending"
)

// Payment is a charge from payer to receiver.
type Payment struct {
	ID            string
	PayerID       string
	ReceiverID    string
	RelatedType   string
	RelatedID     string
	Concept       string
	Description   string
	Amount        float64
	Currency      string
	DueDate       time.Time
	ReferenceCode string
	Status        string
	CreatedAt     time.Time
}

// ReviewContext describes why a review was requested.
type ReviewContext string

const (
	ReviewContextNormal            ReviewContext = "normal"
	ReviewContextCancelledByTenant ReviewContext = "cancelledByTenant"
	ReviewContextCancelledByOwner  ReviewContext = "cancelledByOwner"
)

// ReviewStatus is the fill-in state of a review.
type ReviewStatus string

const (
	ReviewPending   ReviewStatus = "pending"
	ReviewCompleted ReviewStatus = "completed"
)

// Review is one party's rating of the other. Rating stays nil until the author
// fills it in.
type Review struct {
	ID            string
	AuthorID      string
	ReceiverID    string
	ApplicationID string
	Rating        *bool
	Comment       *string
	ContextType   ReviewContext
	Weight        float64
	Status        ReviewStatus
	CreatedAt     time.Time
}

// LegalDocument is a file attached to an application; it dies with it.
type LegalDocument struct {
	ID            string
	ApplicationID string
	Type          string
	URL           string
	CreatedAt     time.Time
}

// NotificationKind identifies the template a notification was built from.
type NotificationKind string

const (
	NotifyNewApplication     NotificationKind = "new_application"
	NotifyDocumentsRequired  NotificationKind = "documents_required"
	NotifyPreApproved        NotificationKind = "pre_approved"
	NotifyReturnedToPending  NotificationKind = "returned_to_pending"
	NotifyConfirmedByRenter  NotificationKind = "confirmed_by_renter"
	NotifyRejected           NotificationKind = "rejected"
	NotifyWithdrawn          NotificationKind = "withdrawn"
	NotifyContractSigned     NotificationKind = "contract_signed"
	NotifyContractTerminated NotificationKind = "contract_terminated"
)

// Notification is a message for one user about one application.
type Notification struct {
	ID            string
	RecipientID   string
	ApplicationID string
	Kind          NotificationKind
	Title         string
	Body          string
	CreatedAt     time.Time
}
