package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/neomorfeo/habitta/internal/domain"
	"github.com/neomorfeo/habitta/internal/logger"
)

// Options tunes an ApplicationService. Zero values fall back to defaults.
type Options struct {
	// AtomicEffects commits the status write together with the property,
	// payment and review writes, and a failed write fails the update. The
	// notification then runs after those writes instead of before them.
	// When false they run after the commit in notification, property,
	// payment, review order and their failures are only logged.
	AtomicEffects bool
	Currency      string
	Logger        *logger.Logger
	// Observers run after notifications on every status change, best-effort.
	Observers []Effect
	Now       func() time.Time
	NewID     func() string
}

// UpdateInput carries the client-writable fields of an application.
type UpdateInput struct {
	Status *domain.Status
	// Description replaces the note when set. An empty string clears it.
	Description *string
}

// UpdateResult is the re-read application and the message for its new status.
type UpdateResult struct {
	Application domain.Application
	Message     string
}

// ApplicationService orchestrates the rental application lifecycle.
type ApplicationService struct {
	store     domain.Store
	validator domain.TransitionValidator
	notifier  domain.Notifier
	log       *logger.Logger

	atomic bool
	now    func() time.Time
	newID  func() string

	// notify runs after the status write and never fails the request.
	notify []Effect
	// writes touch collaborator entities, in order.
	writes []Effect
}

// NewApplicationService creates a service with the given adapters.
func NewApplicationService(store domain.Store, validator domain.TransitionValidator, notifier domain.Notifier, opts Options) *ApplicationService {
	if opts.Currency == "" {
		opts.Currency = "COP"
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC().Truncate(time.Second) }
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	s := &ApplicationService{
		store:     store,
		validator: validator,
		notifier:  notifier,
		log:       opts.Logger,
		atomic:    opts.AtomicEffects,
		now:       opts.Now,
		newID:     opts.NewID,
	}
	s.notify = append([]Effect{&notifyEffect{notifier: notifier, newID: opts.NewID}}, opts.Observers...)
	s.writes = []Effect{
		propertyFlip{},
		&rentPayment{currency: opts.Currency, newID: opts.NewID},
		&reviewSeeder{newID: opts.NewID},
	}
	return s
}

// Create opens a pending application from actor on propertyID and tells the
// property owner about it.
func (s *ApplicationService) Create(ctx context.Context, actor domain.Actor, propertyID string, description *string) (domain.Application, error) {
	if _, err := s.store.Users().GetByID(ctx, actor.ID); err != nil {
		return domain.Application{}, err
	}

	property, err := s.store.Properties().GetByID(ctx, propertyID)
	if err != nil {
		return domain.Application{}, err
	}

	_, err = s.store.Applications().FindByRenterAndProperty(ctx, actor.ID, propertyID)
	switch {
	case err == nil:
		return domain.Application{}, &domain.DuplicateApplicationError{RenterID: actor.ID, PropertyID: propertyID}
	case !errors.Is(err, domain.ErrApplicationNotFound):
		return domain.Application{}, fmt.Errorf("checking existing application: %w", err)
	}

	app := domain.NewApplication(s.newID(), actor.ID, property, description, s.now())
	if err := s.store.Applications().Create(ctx, app); err != nil {
		return domain.Application{}, fmt.Errorf("creating application: %w", err)
	}

	created, err := s.store.Applications().GetByID(ctx, app.ID)
	if err != nil {
		return domain.Application{}, fmt.Errorf("reloading application: %w", err)
	}

	n := domain.NewApplicationNotification(created)
	n.ID = s.newID()
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.Warn(s.log.WithField(ctx, "application_id", created.ID), "new application notification failed", err)
	}
	return created, nil
}

// Get returns one application to any of its parties.
func (s *ApplicationService) Get(ctx context.Context, actor domain.Actor, id string) (domain.Application, error) {
	app, _, err := s.authorize(ctx, actor, id, "view", domain.Access.Any)
	return app, err
}

// ListMine returns the applications actor submitted as a renter.
func (s *ApplicationService) ListMine(ctx context.Context, actor domain.Actor) ([]domain.Application, error) {
	return s.store.Applications().List(ctx, domain.ListFilter{RenterID: actor.ID})
}

// ListForOwner returns the applications on properties actor owns.
func (s *ApplicationService) ListForOwner(ctx context.Context, actor domain.Actor) ([]domain.Application, error) {
	return s.store.Applications().List(ctx, domain.ListFilter{OwnerID: actor.ID})
}

// ListAll returns every application matching filter. Admins only.
func (s *ApplicationService) ListAll(ctx context.Context, actor domain.Actor, filter domain.ListFilter) ([]domain.Application, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, &domain.ForbiddenError{Action: "list", Resource: "all applications"}
	}
	return s.store.Applications().List(ctx, filter)
}

// ListForProperty returns the applications on one property to its owner or an admin.
func (s *ApplicationService) ListForProperty(ctx context.Context, actor domain.Actor, propertyID string) ([]domain.Application, error) {
	property, err := s.store.Properties().GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin && actor.ID != property.OwnerID {
		return nil, &domain.ForbiddenError{Action: "list", Resource: "applications for this property"}
	}
	return s.store.Applications().List(ctx, domain.ListFilter{PropertyID: propertyID})
}

// Update applies a status transition and/or a description edit on behalf of actor.
func (s *ApplicationService) Update(ctx context.Context, actor domain.Actor, id string, in UpdateInput) (UpdateResult, error) {
	app, access, err := s.authorize(ctx, actor, id, "update", domain.Access.Any)
	if err != nil {
		return UpdateResult{}, err
	}

	class := access.Class()
	from := app.Status
	to := from

	if in.Status != nil && *in.Status != from {
		if err := s.validator.Validate(ctx, from, *in.Status, class); err != nil {
			return UpdateResult{}, err
		}
		if class == domain.RoleClassRenter && !domain.RenterWritable(*in.Status) {
			return UpdateResult{}, &domain.TransitionError{Current: from, Requested: *in.Status, Class: class}
		}
		to = *in.Status
	}

	switch {
	case in.Description == nil:
	case *in.Description == "":
		app.Description = nil
	default:
		app.Description = in.Description
	}

	now := s.now()
	if to == domain.StatusSigned && from != domain.StatusSigned {
		app.SignContract(now)
	}
	app.Status = to
	app.UpdatedAt = now

	change := domain.StatusChange{Application: app, From: from, To: to, ActorID: actor.ID, At: now}
	ctx = s.log.WithFields(ctx, map[string]any{
		"application_id": app.ID,
		"from":           string(from),
		"to":             string(to),
	})

	if err := s.persist(ctx, change); err != nil {
		return UpdateResult{}, err
	}

	updated, err := s.store.Applications().GetByID(ctx, app.ID)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("reloading application: %w", err)
	}
	if change.Changed() {
		s.log.Info(ctx, "application status changed")
	}
	return UpdateResult{Application: updated, Message: domain.StatusMessage(updated.Status)}, nil
}

// persist writes the change and runs its effects. In atomic mode the
// collaborator writes share the status write's transaction.
func (s *ApplicationService) persist(ctx context.Context, change domain.StatusChange) error {
	if !s.atomic {
		if err := s.store.Applications().Update(ctx, change.Application); err != nil {
			return fmt.Errorf("updating application: %w", err)
		}
		if change.Changed() {
			_ = s.dispatch(ctx, s.store, s.notify, change, true)
			_ = s.dispatch(ctx, s.store, s.writes, change, true)
		}
		return nil
	}

	err := s.store.InTx(ctx, func(tx domain.Store) error {
		if err := tx.Applications().Update(ctx, change.Application); err != nil {
			return fmt.Errorf("updating application: %w", err)
		}
		if !change.Changed() {
			return nil
		}
		return s.dispatch(ctx, tx, s.writes, change, false)
	})
	if err != nil {
		return err
	}
	if change.Changed() {
		_ = s.dispatch(ctx, s.store, s.notify, change, true)
	}
	return nil
}

// Delete removes an application and its legal documents. Only the renter or
// an admin may delete, and never while an active contract has payments.
func (s *ApplicationService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	app, _, err := s.authorize(ctx, actor, id, "delete", domain.Access.CanDelete)
	if err != nil {
		return err
	}

	return s.store.InTx(ctx, func(tx domain.Store) error {
		if !app.Status.Terminal() {
			payments, err := tx.Payments().ListByRelated(ctx, domain.PaymentRelatedRent, app.ID)
			if err != nil {
				return fmt.Errorf("listing payments: %w", err)
			}
			if len(payments) > 0 {
				return domain.ErrApplicationInUse
			}
		}
		if err := tx.Applications().Delete(ctx, app.ID); err != nil {
			return fmt.Errorf("deleting application: %w", err)
		}
		return nil
	})
}

// Payments returns the rent charges generated for an application.
func (s *ApplicationService) Payments(ctx context.Context, actor domain.Actor, id string) ([]domain.Payment, error) {
	app, _, err := s.authorize(ctx, actor, id, "view", domain.Access.Any)
	if err != nil {
		return nil, err
	}
	return s.store.Payments().ListByRelated(ctx, domain.PaymentRelatedRent, app.ID)
}

// Reviews returns the reviews seeded for an application.
func (s *ApplicationService) Reviews(ctx context.Context, actor domain.Actor, id string) ([]domain.Review, error) {
	app, _, err := s.authorize(ctx, actor, id, "view", domain.Access.Any)
	if err != nil {
		return nil, err
	}
	return s.store.Reviews().ListByApplication(ctx, app.ID)
}

// authorize is the single gate in front of every per-application operation:
// load, resolve the actor's relationship, check it.
func (s *ApplicationService) authorize(ctx context.Context, actor domain.Actor, id, action string, allow func(domain.Access) bool) (domain.Application, domain.Access, error) {
	app, err := s.store.Applications().GetByID(ctx, id)
	if err != nil {
		return domain.Application{}, domain.Access{}, err
	}
	access := domain.ResolveAccess(app, actor)
	if !allow(access) {
		return domain.Application{}, domain.Access{}, &domain.ForbiddenError{Action: action}
	}
	return app, access, nil
}
