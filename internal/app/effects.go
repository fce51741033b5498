package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/neomorfeo/habitta/internal/domain"
)

// Effect is one side effect of a persisted status change. Apply receives the
// store the status write went through, so transactional effects share its
// transaction.
type Effect interface {
	Name() string
	Apply(ctx context.Context, store domain.Store, change domain.StatusChange) error
}

// Compile-time checks.
var (
	_ Effect = (*notifyEffect)(nil)
	_ Effect = (*propertyFlip)(nil)
	_ Effect = (*rentPayment)(nil)
	_ Effect = (*reviewSeeder)(nil)
)

// notifyEffect sends every notification a transition produces.
type notifyEffect struct {
	notifier domain.Notifier
	newID    func() string
}

func (e *notifyEffect) Name() string { return "notification" }

func (e *notifyEffect) Apply(ctx context.Context, _ domain.Store, change domain.StatusChange) error {
	var errs []error
	for _, n := range domain.NotificationsFor(change) {
		n.ID = e.newID()
		if err := e.notifier.Notify(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("notifying %s: %w", n.RecipientID, err))
		}
	}
	return errors.Join(errs...)
}

// propertyFlip keeps the property listing in step with its contract.
type propertyFlip struct{}

func (propertyFlip) Name() string { return "property_status" }

func (propertyFlip) Apply(ctx context.Context, store domain.Store, change domain.StatusChange) error {
	status, ok := domain.PublicationStatusFor(change.To)
	if !ok {
		return nil
	}
	return store.Properties().SetPublicationStatus(ctx, change.Application.PropertyID, status)
}

// rentPayment records the first rent charge of a signed contract.
type rentPayment struct {
	currency string
	newID    func() string
}

func (e *rentPayment) Name() string { return "rent_payment" }

func (e *rentPayment) Apply(ctx context.Context, store domain.Store, change domain.StatusChange) error {
	payment, ok := domain.RentPaymentFor(change, e.currency)
	if !ok {
		return nil
	}
	payment.ID = e.newID()
	payment.ReferenceCode = referenceCode(payment.ID)
	return store.Payments().Create(ctx, payment)
}

func referenceCode(id string) string {
	code := strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	if len(code) > 12 {
		code = code[:12]
	}
	return "RENT-" + code
}

// reviewSeeder opens the pending reviews a transition calls for.
type reviewSeeder struct {
	newID func() string
}

func (e *reviewSeeder) Name() string { return "reviews" }

func (e *reviewSeeder) Apply(ctx context.Context, store domain.Store, change domain.StatusChange) error {
	reviews := domain.ReviewsFor(change)
	if len(reviews) == 0 {
		return nil
	}
	for i := range reviews {
		reviews[i].ID = e.newID()
	}
	return store.Reviews().CreateMany(ctx, reviews)
}

// dispatch runs effects in order. With bestEffort every failure is logged and
// the rest still run; otherwise the first failure stops the run and is returned.
func (s *ApplicationService) dispatch(ctx context.Context, store domain.Store, effects []Effect, change domain.StatusChange, bestEffort bool) error {
	for _, effect := range effects {
		err := effect.Apply(ctx, store, change)
		if err == nil {
			continue
		}
		if !bestEffort {
			return fmt.Errorf("side effect %s: %w", effect.Name(), err)
		}
		s.log.Warn(s.log.WithField(ctx, "effect", effect.Name()), "side effect failed", err)
	}
	return nil
}
