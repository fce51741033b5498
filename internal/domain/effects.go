package domain

import "fmt"

// PublicationStatusFor returns the property state a transition into to implies.
func PublicationStatusFor(to Status) (PublicationStatus, bool) {
	switch to {
	case StatusSigned:
		return PublicationRented, true
	case StatusTerminated:
		return PublicationPublished, true
	}
	return "", false
}

// RentPaymentFor builds the first rent charge for a newly signed application.
// ID and ReferenceCode are left for the caller.
func RentPaymentFor(c StatusChange, currency string) (Payment, bool) {
	if c.To != StatusSigned || c.From == StatusSigned {
		return Payment{}, false
	}
	app := c.Application
	return Payment{
		PayerID:     app.RenterID,
		ReceiverID:  app.Property.OwnerID,
		RelatedType: PaymentRelatedRent,
		RelatedID:   app.ID,
		Concept:     fmt.Sprintf("Rent: %s", app.Property.Title),
		Description: fmt.Sprintf("First rent payment for application %s", app.ID),
		Amount:      app.Property.Price,
		Currency:    currency,
		DueDate:     c.At.AddDate(0, 1, 0),
		Status:      PaymentPending,
		CreatedAt:   c.At,
	}, true
}

// Review weights.
const (
	WeightNormal    = 1.0
	WeightCancelled = 0.5
)

// ReviewsFor returns the pending reviews a transition seeds, without IDs.
func ReviewsFor(c StatusChange) []Review {
	app := c.Application
	owner, renter := app.Property.OwnerID, app.RenterID

	pending := func(author, receiver string, ctx ReviewContext, weight float64) Review {
		return Review{
			AuthorID:      author,
			ReceiverID:    receiver,
			ApplicationID: app.ID,
			ContextType:   ctx,
			Weight:        weight,
			Status:        ReviewPending,
			CreatedAt:     c.At,
		}
	}

	var out []Review
	switch {
	case (c.From == StatusPreApproved || c.From == StatusApproved) && c.To == StatusWithdrawn:
		out = append(out, pending(owner, renter, ReviewContextCancelledByTenant, WeightCancelled))
	case c.From == StatusApproved && c.To == StatusRejected && c.ActorID == owner:
		out = append(out, pending(renter, owner, ReviewContextCancelledByOwner, WeightCancelled))
	case c.From == StatusSigned && c.To == StatusTerminated:
		out = append(out,
			pending(owner, renter, ReviewContextNormal, WeightNormal),
			pending(renter, owner, ReviewContextNormal, WeightNormal),
		)
	}
	return out
}

// NotificationsFor returns the messages a transition produces, without IDs.
func NotificationsFor(c StatusChange) []Notification {
	if !c.Changed() {
		return nil
	}
	app := c.Application
	title := app.Property.Title
	owner, renter := app.Property.OwnerID, app.RenterID

	note := func(to string, kind NotificationKind, head, body string) Notification {
		return Notification{
			RecipientID:   to,
			ApplicationID: app.ID,
			Kind:          kind,
			Title:         head,
			Body:          body,
			CreatedAt:     c.At,
		}
	}

	switch c.To {
	case StatusDocumentsRequired:
		return []Notification{note(renter, NotifyDocumentsRequired, "Documents required",
			fmt.Sprintf("The owner of %q needs additional documents for your application.", title))}
	case StatusPreApproved:
		return []Notification{note(renter, NotifyPreApproved, "Pre-approved",
			fmt.Sprintf("Your application for %q was pre-approved. Confirm to continue.", title))}
	case StatusPending:
		return []Notification{note(renter, NotifyReturnedToPending, "Application under review",
			fmt.Sprintf("Your application for %q is back under review.", title))}
	case StatusApproved:
		return []Notification{note(owner, NotifyConfirmedByRenter, "Application confirmed",
			fmt.Sprintf("%s confirmed the application for %q.", renterName(app), title))}
	case StatusRejected:
		return []Notification{note(renter, NotifyRejected, "Application not approved",
			fmt.Sprintf("Your application for %q was not approved this time.", title))}
	case StatusWithdrawn:
		return []Notification{note(owner, NotifyWithdrawn, "Application withdrawn",
			fmt.Sprintf("%s withdrew the application for %q.", renterName(app), title))}
	case StatusSigned:
		return []Notification{
			note(renter, NotifyContractSigned, "Contract signed", fmt.Sprintf("Your contract for %q is signed.", title)),
			note(owner, NotifyContractSigned, "Contract signed", fmt.Sprintf("The contract for %q is signed.", title)),
		}
	case StatusTerminated:
		return []Notification{
			note(renter, NotifyContractTerminated, "Contract finished", fmt.Sprintf("Your contract for %q has ended. Leave a review.", title)),
			note(owner, NotifyContractTerminated, "Contract finished", fmt.Sprintf("The contract for %q has ended. Leave a review.", title)),
		}
	}
	return nil
}

// NewApplicationNotification tells the property owner about a fresh application.
func NewApplicationNotification(app Application) Notification {
	return Notification{
		RecipientID:   app.Property.OwnerID,
		ApplicationID: app.ID,
		Kind:          NotifyNewApplication,
		Title:         "New application received",
		Body:          fmt.Sprintf("%s is interested in your property %q.", renterName(app), app.Property.Title),
		CreatedAt:     app.AppliedAt,
	}
}

func renterName(app Application) string {
	if app.Renter.Name != "" {
		return app.Renter.Name
	}
	return "The applicant"
}

// ReviewSummary aggregates the rated reviews a user received.
type ReviewSummary struct {
	UserID             string
	TotalReviews       int
	PositivePercentage float64
	ContextCounts      map[ReviewContext]int
}

// SummarizeReviews weighs each rated review by its context weight. Reviews still
// awaiting a rating are ignored.
func SummarizeReviews(userID string, reviews []Review) ReviewSummary {
	summary := ReviewSummary{UserID: userID, ContextCounts: map[ReviewContext]int{}}

	var total, positive float64
	for _, r := range reviews {
		if r.Rating == nil {
			continue
		}
		summary.TotalReviews++
		summary.ContextCounts[r.ContextType]++
		total += r.Weight
		if *r.Rating {
			positive += r.Weight
		}
	}
	if total > 0 {
		summary.PositivePercentage = positive / total * 100
	}
	return summary
}
