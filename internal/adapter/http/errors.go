package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/habitta/internal/domain"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	status int

	Success bool                `json:"success"`
	Message string              `json:"message"`
	Errors  []*huma.ErrorDetail `json:"errors,omitempty"`
}

func (e *ErrorResponse) Error() string  { return e.Message }
func (e *ErrorResponse) GetStatus() int { return e.status }

// newError replaces huma.NewError. Request validation failures surface as 400.
func newError(status int, msg string, errs ...error) huma.StatusError {
	if status == http.StatusUnprocessableEntity {
		status = http.StatusBadRequest
	}
	details := make([]*huma.ErrorDetail, 0, len(errs))
	for _, err := range errs {
		if err == nil {
			continue
		}
		var d huma.ErrorDetailer
		if errors.As(err, &d) {
			details = append(details, d.ErrorDetail())
			continue
		}
		details = append(details, &huma.ErrorDetail{Message: err.Error()})
	}
	return &ErrorResponse{status: status, Message: msg, Errors: details}
}

// toHumaError translates domain errors to Huma HTTP errors.
func (h *handler) toHumaError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrApplicationNotFound):
		return huma.Error404NotFound("application not found")
	case errors.Is(err, domain.ErrPropertyNotFound):
		return huma.Error404NotFound("property not found")
	case errors.Is(err, domain.ErrUserNotFound):
		return huma.Error404NotFound("user not found")
	case errors.Is(err, domain.ErrStaleApplication):
		return huma.Error409Conflict("application was modified by another request, reload and retry")
	case errors.Is(err, domain.ErrApplicationInUse):
		return huma.Error409Conflict("cannot delete an active application with payments")
	}

	var dupErr *domain.DuplicateApplicationError
	if errors.As(err, &dupErr) {
		return huma.Error409Conflict("you have already applied for this property")
	}

	var forbidden *domain.ForbiddenError
	if errors.As(err, &forbidden) {
		return huma.Error403Forbidden(forbidden.Error())
	}

	var trErr *domain.TransitionError
	if errors.As(err, &trErr) {
		return huma.Error400BadRequest(trErr.Error())
	}

	h.log.Error(ctx, "request failed", err)
	return huma.Error500InternalServerError("internal server error")
}
