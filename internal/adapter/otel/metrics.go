package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/neomorfeo/habitta/internal/domain"
)

// TransitionMetrics counts persisted status changes by source and target
// state. It is registered as an observer effect on the application service.
type TransitionMetrics struct {
	transitions metric.Int64Counter
}

// NewTransitionMetrics creates the habitta.application.transitions counter on mp.
func NewTransitionMetrics(mp metric.MeterProvider) (*TransitionMetrics, error) {
	counter, err := mp.Meter(instrumentationName).Int64Counter(
		"habitta.application.transitions",
		metric.WithDescription("Application status changes"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transition counter: %w", err)
	}
	return &TransitionMetrics{transitions: counter}, nil
}

func (m *TransitionMetrics) Name() string { return "transition_metrics" }

func (m *TransitionMetrics) Apply(ctx context.Context, _ domain.Store, change domain.StatusChange) error {
	m.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", string(change.From)),
		attribute.String("to", string(change.To)),
		attribute.Bool("terminal", change.To.Terminal()),
	))
	return nil
}
