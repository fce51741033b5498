package domain

import "time"

// Status represents the lifecycle state of a rental application.
type Status string

const (
	StatusPending           Status = "pending"
	StatusDocumentsRequired Status = "documents_required"
	StatusPreApproved       Status = "pre_approved"
	StatusApproved          Status = "approved"
	StatusSigned            Status = "signed"
	StatusTerminated        Status = "terminated"
	StatusRejected          Status = "rejected"
	StatusWithdrawn         Status = "withdrawn"
)

// Statuses lists every lifecycle state in wire order.
var Statuses = []Status{
	StatusPending,
	StatusDocumentsRequired,
	StatusPreApproved,
	StatusApproved,
	StatusRejected,
	StatusWithdrawn,
	StatusSigned,
	StatusTerminated,
}

// Valid reports whether s is a known lifecycle state.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusWithdrawn || s == StatusTerminated
}

// RoleClass is the permission category of an actor relative to one application.
type RoleClass string

const (
	RoleClassNone         RoleClass = "none"
	RoleClassOwnerOrAdmin RoleClass = "owner_or_admin"
	RoleClassRenter       RoleClass = "renter"
)

// Transition is one allowed status change for a role class.
type Transition struct {
	Class RoleClass
	Src   Status
	Dst   Status
}

// Transitions is the application state machine. Anything absent is forbidden.
// Terminal states have no entries for either class.
var Transitions = []Transition{
	{Class: RoleClassOwnerOrAdmin, Src: StatusPending, Dst: StatusDocumentsRequired},
	{Class: RoleClassOwnerOrAdmin, Src: StatusPending, Dst: StatusRejected},
	{Class: RoleClassOwnerOrAdmin, Src: StatusDocumentsRequired, Dst: StatusPreApproved},
	{Class: RoleClassOwnerOrAdmin, Src: StatusDocumentsRequired, Dst: StatusRejected},
	{Class: RoleClassOwnerOrAdmin, Src: StatusPreApproved, Dst: StatusPending},
	{Class: RoleClassOwnerOrAdmin, Src: StatusApproved, Dst: StatusSigned},
	{Class: RoleClassOwnerOrAdmin, Src: StatusApproved, Dst: StatusRejected},
	{Class: RoleClassOwnerOrAdmin, Src: StatusSigned, Dst: StatusTerminated},

	{Class: RoleClassRenter, Src: StatusPending, Dst: StatusWithdrawn},
	{Class: RoleClassRenter, Src: StatusDocumentsRequired, Dst: StatusWithdrawn},
	{Class: RoleClassRenter, Src: StatusPreApproved, Dst: StatusApproved},
	{Class: RoleClassRenter, Src: StatusPreApproved, Dst: StatusWithdrawn},
	{Class: RoleClassRenter, Src: StatusApproved, Dst: StatusWithdrawn},
	{Class: RoleClassRenter, Src: StatusSigned, Dst: StatusTerminated},
}

// Allowed reports whether class may move an application from current to requested.
func Allowed(current, requested Status, class RoleClass) bool {
	for _, t := range Transitions {
		if t.Class == class && t.Src == current && t.Dst == requested {
			return true
		}
	}
	return false
}

// NextStatuses returns the states class may move an application to from current.
func NextStatuses(current Status, class RoleClass) []Status {
	var out []Status
	for _, t := range Transitions {
		if t.Class == class && t.Src == current {
			out = append(out, t.Dst)
		}
	}
	return out
}

// RenterWritable reports whether a renter-only actor may persist s.
func RenterWritable(s Status) bool {
	return s == StatusApproved || s == StatusWithdrawn || s == StatusTerminated
}

// PaymentFrequencyMonthly is the only frequency contracts are signed with.
const PaymentFrequencyMonthly = "monthly"

// Application is one renter's bid on one property.
type Application struct {
	ID          string
	RenterID    string
	PropertyID  string
	Status      Status
	Description *string

	// Contract terms, set when the application is signed.
	StartDate        *time.Time
	EndDate          *time.Time
	RentAmount       *float64
	PaymentFrequency *string

	// Version increments on every persisted update.
	Version   int
	AppliedAt time.Time
	UpdatedAt time.Time

	Renter   UserSummary
	Property PropertySummary
}

// UserSummary is the renter projection joined onto an application.
type UserSummary struct {
	ID    string
	Name  string
	Email string
	Phone string
}

// PropertySummary is the property projection joined onto an application.
type PropertySummary struct {
	ID      string
	OwnerID string
	Title   string
	Address string
	Price   float64
	Image   string
}

// NewApplication creates an application in the initial "pending" state.
func NewApplication(id, renterID string, property Property, description *string, now time.Time) Application {
	return Application{
		ID:          id,
		RenterID:    renterID,
		PropertyID:  property.ID,
		Status:      StatusPending,
		Description: description,
		Version:     1,
		AppliedAt:   now,
		UpdatedAt:   now,
		Renter:      UserSummary{ID: renterID},
		Property:    property.Summary(),
	}
}

// SignContract fills the contract terms from the property price. Client input
// never reaches these fields.
func (a *Application) SignContract(now time.Time) {
	start := now
	end := now.AddDate(0, 1, 0)
	rent := a.Property.Price
	freq := PaymentFrequencyMonthly

	a.StartDate = &start
	a.EndDate = &end
	a.RentAmount = &rent
	a.PaymentFrequency = &freq
}

// StatusChange is a persisted transition, the input of every side effect.
type StatusChange struct {
	Application Application
	From        Status
	To          Status
	ActorID     string
	At          time.Time
}

// Changed reports whether the status actually moved.
func (c StatusChange) Changed() bool {
	return c.From != c.To
}

// StatusMessage is the human-readable response text for a new status. It is
// English like every other API text and carries no machine meaning.
func StatusMessage(s Status) string {
	switch s {
	case StatusDocumentsRequired:
		return "Additional documents are required from the applicant"
	case StatusPreApproved:
		return "Application pre-approved. The applicant can confirm to finish the process."
	case StatusApproved:
		return "Application approved successfully"
	case StatusSigned:
		return "Contract signed successfully"
	case StatusTerminated:
		return "Rental process terminated"
	case StatusRejected:
		return "Application rejected"
	case StatusWithdrawn:
		return "Application withdrawn by the applicant"
	}
	return "Application updated successfully"
}
