package fsm

import (
	"context"
	"errors"

	loopfsm "github.com/looplab/fsm"

	"github.com/neomorfeo/habitta/internal/domain"
)

// Compile-time check: Validator implements domain.TransitionValidator.
var _ domain.TransitionValidator = (*Validator)(nil)

// eventsByClass converts domain.Transitions into one looplab/fsm event set per
// role class. Each event is named after its destination status and lists every
// source state that may reach it (e.g. "withdrawn" from pending,
// documents_required, pre_approved and approved for renters).
var eventsByClass = buildEvents()

func buildEvents() map[domain.RoleClass][]loopfsm.EventDesc {
	type key struct {
		class domain.RoleClass
		dst   domain.Status
	}
	grouped := make(map[key][]string)
	order := make([]key, 0)

	for _, t := range domain.Transitions {
		k := key{class: t.Class, dst: t.Dst}
		if _, exists := grouped[k]; !exists {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], string(t.Src))
	}

	out := make(map[domain.RoleClass][]loopfsm.EventDesc)
	for _, k := range order {
		out[k.class] = append(out[k.class], loopfsm.EventDesc{
			Name: string(k.dst),
			Src:  grouped[k],
			Dst:  string(k.dst),
		})
	}
	return out
}

// Validator implements domain.TransitionValidator using looplab/fsm.
// It creates a short-lived FSM per call, initialized with the application's
// current state and the event set of the actor's role class, because
// looplab/fsm tracks the current state internally.
type Validator struct{}

// New creates a new FSM-backed transition validator.
func New() *Validator {
	return &Validator{}
}

// Validate checks whether class may move an application from current to
// requested. It returns a *domain.TransitionError when it may not.
func (v *Validator) Validate(ctx context.Context, current, requested domain.Status, class domain.RoleClass) error {
	events, ok := eventsByClass[class]
	if !ok {
		return &domain.TransitionError{Current: current, Requested: requested, Class: class}
	}

	machine := loopfsm.NewFSM(string(current), events, nil)

	if err := machine.Event(ctx, string(requested)); err != nil {
		var invalidEvent loopfsm.InvalidEventError
		var unknownEvent loopfsm.UnknownEventError
		var noTransition loopfsm.NoTransitionError
		if errors.As(err, &invalidEvent) || errors.As(err, &unknownEvent) || errors.As(err, &noTransition) {
			return &domain.TransitionError{Current: current, Requested: requested, Class: class}
		}
		return err
	}

	if domain.Status(machine.Current()) != requested {
		return &domain.TransitionError{Current: current, Requested: requested, Class: class}
	}
	return nil
}

// Can reports whether class may move an application from current to requested
// without running the transition.
func (v *Validator) Can(current, requested domain.Status, class domain.RoleClass) bool {
	events, ok := eventsByClass[class]
	if !ok {
		return false
	}
	return loopfsm.NewFSM(string(current), events, nil).Can(string(requested))
}
