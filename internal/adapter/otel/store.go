package otel

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/habitta/internal/domain"
)

const instrumentationName = "github.com/neomorfeo/habitta/internal/adapter/otel"

// TracingStore wraps a domain.Store so every repository call gets a span with
// semantic attributes and recorded errors. Transactions are traced as a
// parent span around the calls made inside them.
type TracingStore struct {
	next   domain.Store
	tracer trace.Tracer
}

var _ domain.Store = (*TracingStore)(nil)

// NewTracingStore creates a tracing decorator around the given store.
func NewTracingStore(next domain.Store) *TracingStore {
	return &TracingStore{
		next:   next,
		tracer: otel.Tracer(instrumentationName),
	}
}

func (s *TracingStore) Applications() domain.ApplicationRepository {
	return &tracingApplications{next: s.next.Applications(), tracer: s.tracer}
}

func (s *TracingStore) Properties() domain.PropertyRepository {
	return &tracingProperties{next: s.next.Properties(), tracer: s.tracer}
}

func (s *TracingStore) Payments() domain.PaymentRepository {
	return &tracingPayments{next: s.next.Payments(), tracer: s.tracer}
}

func (s *TracingStore) Reviews() domain.ReviewRepository {
	return &tracingReviews{next: s.next.Reviews(), tracer: s.tracer}
}

func (s *TracingStore) Users() domain.UserRepository {
	return &tracingUsers{next: s.next.Users(), tracer: s.tracer}
}

func (s *TracingStore) Notifications() domain.NotificationRepository {
	return &tracingNotifications{next: s.next.Notifications(), tracer: s.tracer}
}

func (s *TracingStore) InTx(ctx context.Context, fn func(tx domain.Store) error) error {
	ctx, span := s.tracer.Start(ctx, "Store.InTx")
	defer span.End()

	err := s.next.InTx(ctx, func(tx domain.Store) error {
		return fn(&TracingStore{next: tx, tracer: s.tracer})
	})
	record(span, err)
	return err
}

// record marks span as failed when err is set.
func record(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

type tracingApplications struct {
	next   domain.ApplicationRepository
	tracer trace.Tracer
}

func (r *tracingApplications) Create(ctx context.Context, app domain.Application) error {
	ctx, span := r.tracer.Start(ctx, "ApplicationRepository.Create",
		trace.WithAttributes(
			attribute.String("application.id", app.ID),
			attribute.String("property.id", app.PropertyID),
		),
	)
	defer span.End()

	err := r.next.Create(ctx, app)
	record(span, err)
	return err
}

func (r *tracingApplications) GetByID(ctx context.Context, id string) (domain.Application, error) {
	ctx, span := r.tracer.Start(ctx, "ApplicationRepository.GetByID",
		trace.WithAttributes(attribute.String("application.id", id)),
	)
	defer span.End()

	app, err := r.next.GetByID(ctx, id)
	record(span, err)
	return app, err
}

func (r *tracingApplications) FindByRenterAndProperty(ctx context.Context, renterID, propertyID string) (domain.Application, error) {
	ctx, span := r.tracer.Start(ctx, "ApplicationRepository.FindByRenterAndProperty",
		trace.WithAttributes(
			attribute.String("renter.id", renterID),
			attribute.String("property.id", propertyID),
		),
	)
	defer span.End()

	app, err := r.next.FindByRenterAndProperty(ctx, renterID, propertyID)
	// A miss is the expected answer before creating an application.
	if err != nil && !errors.Is(err, domain.ErrApplicationNotFound) {
		record(span, err)
	}
	return app, err
}

func (r *tracingApplications) List(ctx context.Context, filter domain.ListFilter) ([]domain.Application, error) {
	ctx, span := r.tracer.Start(ctx, "ApplicationRepository.List",
		trace.WithAttributes(
			attribute.Int("filter.limit", filter.Limit),
			attribute.Int("filter.offset", filter.Offset),
		),
	)
	defer span.End()

	if filter.Status != nil {
		span.SetAttributes(attribute.String("filter.status", string(*filter.Status)))
	}

	apps, err := r.next.List(ctx, filter)
	if err != nil {
		record(span, err)
	} else {
		span.SetAttributes(attribute.Int("result.count", len(apps)))
	}
	return apps, err
}

func (r *tracingApplications) Update(ctx context.Context, app domain.Application) error {
	ctx, span := r.tracer.Start(ctx, "ApplicationRepository.Update",
		trace.WithAttributes(
			attribute.String("application.id", app.ID),
			attribute.String("application.status", string(app.Status)),
			attribute.Int("application.version", app.Version),
		),
	)
	defer span.End()

	err := r.next.Update(ctx, app)
	record(span, err)
	return err
}

func (r *tracingApplications) Delete(ctx context.Context, id string) error {
	ctx, span := r.tracer.Start(ctx, "ApplicationRepository.Delete",
		trace.WithAttributes(attribute.String("application.id", id)),
	)
	defer span.End()

	err := r.next.Delete(ctx, id)
	record(span, err)
	return err
}

type tracingProperties struct {
	next   domain.PropertyRepository
	tracer trace.Tracer
}

func (r *tracingProperties) GetByID(ctx context.Context, id string) (domain.Property, error) {
	ctx, span := r.tracer.Start(ctx, "PropertyRepository.GetByID",
		trace.WithAttributes(attribute.String("property.id", id)),
	)
	defer span.End()

	p, err := r.next.GetByID(ctx, id)
	record(span, err)
	return p, err
}

func (r *tracingProperties) SetPublicationStatus(ctx context.Context, id string, status domain.PublicationStatus) error {
	ctx, span := r.tracer.Start(ctx, "PropertyRepository.SetPublicationStatus",
		trace.WithAttributes(
			attribute.String("property.id", id),
			attribute.String("property.publication_status", string(status)),
		),
	)
	defer span.End()

	err := r.next.SetPublicationStatus(ctx, id, status)
	record(span, err)
	return err
}

type tracingPayments struct {
	next   domain.PaymentRepository
	tracer trace.Tracer
}

func (r *tracingPayments) Create(ctx context.Context, p domain.Payment) error {
	ctx, span := r.tracer.Start(ctx, "PaymentRepository.Create",
		trace.WithAttributes(
			attribute.String("payment.id", p.ID),
			attribute.String("payment.related_type", p.RelatedType),
			attribute.String("payment.related_id", p.RelatedID),
		),
	)
	defer span.End()

	err := r.next.Create(ctx, p)
	record(span, err)
	return err
}

func (r *tracingPayments) ListByRelated(ctx context.Context, relatedType, relatedID string) ([]domain.Payment, error) {
	ctx, span := r.tracer.Start(ctx, "PaymentRepository.ListByRelated",
		trace.WithAttributes(
			attribute.String("payment.related_type", relatedType),
			attribute.String("payment.related_id", relatedID),
		),
	)
	defer span.End()

	payments, err := r.next.ListByRelated(ctx, relatedType, relatedID)
	record(span, err)
	return payments, err
}

type tracingReviews struct {
	next   domain.ReviewRepository
	tracer trace.Tracer
}

func (r *tracingReviews) CreateMany(ctx context.Context, reviews []domain.Review) error {
	ctx, span := r.tracer.Start(ctx, "ReviewRepository.CreateMany",
		trace.WithAttributes(attribute.Int("review.count", len(reviews))),
	)
	defer span.End()

	err := r.next.CreateMany(ctx, reviews)
	record(span, err)
	return err
}

func (r *tracingReviews) ListByApplication(ctx context.Context, applicationID string) ([]domain.Review, error) {
	ctx, span := r.tracer.Start(ctx, "ReviewRepository.ListByApplication",
		trace.WithAttributes(attribute.String("application.id", applicationID)),
	)
	defer span.End()

	reviews, err := r.next.ListByApplication(ctx, applicationID)
	record(span, err)
	return reviews, err
}

func (r *tracingReviews) ListByReceiver(ctx context.Context, userID string) ([]domain.Review, error) {
	ctx, span := r.tracer.Start(ctx, "ReviewRepository.ListByReceiver",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	reviews, err := r.next.ListByReceiver(ctx, userID)
	record(span, err)
	return reviews, err
}

type tracingUsers struct {
	next   domain.UserRepository
	tracer trace.Tracer
}

func (r *tracingUsers) GetByID(ctx context.Context, id string) (domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.GetByID",
		trace.WithAttributes(attribute.String("user.id", id)),
	)
	defer span.End()

	u, err := r.next.GetByID(ctx, id)
	record(span, err)
	return u, err
}

type tracingNotifications struct {
	next   domain.NotificationRepository
	tracer trace.Tracer
}

func (r *tracingNotifications) Create(ctx context.Context, n domain.Notification) error {
	ctx, span := r.tracer.Start(ctx, "NotificationRepository.Create",
		trace.WithAttributes(
			attribute.String("notification.id", n.ID),
			attribute.String("notification.kind", string(n.Kind)),
		),
	)
	defer span.End()

	err := r.next.Create(ctx, n)
	record(span, err)
	return err
}

func (r *tracingNotifications) ListByRecipient(ctx context.Context, userID string) ([]domain.Notification, error) {
	ctx, span := r.tracer.Start(ctx, "NotificationRepository.ListByRecipient",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	notes, err := r.next.ListByRecipient(ctx, userID)
	record(span, err)
	return notes, err
}
