package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrPropertyNotFound    = errors.New("property not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrStaleApplication    = errors.New("application was modified concurrently")
	ErrApplicationInUse    = errors.New("application has payments and is still active")
)

// DuplicateApplicationError is returned when a renter already applied to a property.
type DuplicateApplicationError struct {
	RenterID   string
	PropertyID string
}

func (e *DuplicateApplicationError) Error() string {
	return fmt.Sprintf("renter %q already has an application for property %q", e.RenterID, e.PropertyID)
}

// ForbiddenError is returned when the actor is not allowed to act on a resource.
// Resource defaults to "this application".
type ForbiddenError struct {
	Action   string
	Resource string
}

func (e *ForbiddenError) Error() string {
	resource := e.Resource
	if resource == "" {
		resource = "this application"
	}
	return fmt.Sprintf("not allowed to %s %s", e.Action, resource)
}

// TransitionError is returned when a status change is not allowed for the actor.
type TransitionError struct {
	Current   Status
	Requested Status
	Class     RoleClass
}

func (e *TransitionError) Error() string {
	if e.Class == RoleClassRenter {
		return fmt.Sprintf("as the applicant, cannot change status from %q to %q", e.Current, e.Requested)
	}
	return fmt.Sprintf("cannot change status from %q to %q", e.Current, e.Requested)
}
