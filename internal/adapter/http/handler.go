package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/habitta/internal/app"
	"github.com/neomorfeo/habitta/internal/domain"
	"github.com/neomorfeo/habitta/internal/logger"
)

// Services are the application services the API exposes.
type Services struct {
	Applications *app.ApplicationService
	Reviews      *app.ReviewService
	Inbox        *app.InboxService
}

// --- Create Application ---

type CreateApplicationInput struct {
	Body struct {
		PropertyID  string  `json:"id_property" format:"uuid" doc:"Property to apply for"`
		Description *string `json:"description,omitempty" maxLength:"150" doc:"Note for the owner"`
	}
}

type CreateApplicationOutput struct {
	Body ApplicationEnvelope
}

// --- Get / Delete / sub-resources by application ID ---

type ApplicationIDInput struct {
	ID string `path:"id" format:"uuid" doc:"Application ID"`
}

type GetApplicationOutput struct {
	Body ApplicationEnvelope
}

type DeleteApplicationOutput struct {
	Body MessageEnvelope
}

type ListPaymentsOutput struct {
	Body PaymentListEnvelope
}

type ListReviewsOutput struct {
	Body ReviewListEnvelope
}

// --- List Applications ---

type ListApplicationsOutput struct {
	Body ApplicationListEnvelope
}

type ListAllApplicationsInput struct {
	Status string `query:"status" required:"false" doc:"Filter by status"`
	Limit  int    `query:"limit" required:"false" default:"50" minimum:"1" maximum:"200" doc:"Max results"`
	Offset int    `query:"offset" required:"false" default:"0" minimum:"0" doc:"Pagination offset"`
}

type ListPropertyApplicationsInput struct {
	PropertyID string `path:"propertyId" format:"uuid" doc:"Property ID"`
}

// --- Update Application ---

type UpdateApplicationInput struct {
	ID   string `path:"id" format:"uuid" doc:"Application ID"`
	Body struct {
		Status      *string `json:"status,omitempty" enum:"pending,documents_required,pre_approved,approved,rejected,withdrawn,signed,terminated" doc:"Requested lifecycle state"`
		Description *string `json:"description,omitempty" maxLength:"500" doc:"Replacement note, empty string clears it"`
	}
}

type UpdateApplicationOutput struct {
	Body ApplicationEnvelope
}

// --- Users / Notifications ---

type ReviewSummaryInput struct {
	UserID string `path:"id" format:"uuid" doc:"User ID"`
}

type ReviewSummaryOutput struct {
	Body ReviewSummaryEnvelope
}

type ListNotificationsOutput struct {
	Body NotificationListEnvelope
}

type handler struct {
	svc Services
	log *logger.Logger
}

// Register adds all application API routes to the Huma API. Every route
// requires a bearer token.
func Register(api huma.API, svc Services, tokens TokenParser, log *logger.Logger) {
	if log == nil {
		log = logger.Nop()
	}

	h := &handler{svc: svc, log: log}
	secured := huma.Middlewares{authenticate(api, tokens, log)}
	security := []map[string][]string{{bearerScheme: {}}}

	huma.Register(api, huma.Operation{
		OperationID:   "create-application",
		Method:        http.MethodPost,
		Path:          "/api/applications",
		Summary:       "Apply for a property",
		Tags:          []string{"Applications"},
		DefaultStatus: http.StatusCreated,
		Security:      security,
		Middlewares:   secured,
	}, func(ctx context.Context, input *CreateApplicationInput) (*CreateApplicationOutput, error) {
		created, err := h.svc.Applications.Create(ctx, actorFrom(ctx), input.Body.PropertyID, input.Body.Description)
		if err != nil {
			return nil, h.toHumaError(ctx, err)
		}
		return &CreateApplicationOutput{Body: ApplicationEnvelope{
			Success: true,
			Message: "Application submitted successfully",
			Data:    toApplicationResponse(created),
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-my-applications",
		Method:      http.MethodGet,
		Path:        "/api/applications/my",
		Summary:     "List the caller's applications",
		Tags:        []string{"Applications"},
		Security:    security,
		Middlewares: secured,
	}, func(ctx context.Context, _ *struct{}) (*ListApplicationsOutput, error) {
		apps, err := h.svc.Applications.ListMine(ctx, actorFrom(ctx))
		if err != nil {
			return nil, h.toHumaError(ctx, err)
		}
		return listOutput(apps), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-owner-applications",
		Method:      http.MethodGet,
		Path:        "/api/applications/my-owner",
		Summary:     "List applications on the caller's properties",
		Tags:        []string{"Applications"},
		Security:    security,
		Middlewares: secured,
	}, func(ctx context.Context, _ *struct{}) (*ListApplicationsOutput, error) {
		apps, err := h.svc.Applications.ListForOwner(ctx, actorFrom(ctx))
		if err != nil {
			return nil, h.toHumaError(ctx, err)
		}
		return listOutput(apps), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-applications",
		Method:      http.MethodGet,
		Path:        "/api/applications",
		Summary:     "List all applications (admin)",
		Tags:        []string{"Applications"},
		Security:    security,
		Middlewares: secured,
	}, func(ctx context.Context, input *ListAllApplicationsInput) (*ListApplicationsOutput, error) {
		filter := domain.ListFilter{Limit: input.Limit, Offset: input.Offset}
		if input.Status != "" {
			s := domain.Status(input.Status)
			if !s.Valid() {
				return nil, huma.Error400BadRequest("unknown status " + input.Status)
			}
			filter.Status = &s
		}

		apps, err := h.svc.Applications.ListAll(ctx, actorFrom(ctx), filter)
		if err != nil {
			return nil, h.toHumaError(ctx, err)
		}
		return listOutput(apps), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-property-applications",
		Method:      http.MethodGet,
		Path:        "/api/applications/property/{propertyId}",
		Summary:     "List applications for one property",
		Tags:        []string{"Applications"},
		Security:    security,
		Middlewares: secured,
	}, func(ctx context.Context, input *ListPropertyApplicationsInput) (*ListApplicationsOutput, error) {
		apps, err := h.svc.Applications.ListForProperty(ctx, actorFrom(ctx), input.PropertyID)
		if err != nil {
			return nil, h.toHumaError(ctx, err)
		}
		return listOutput(apps), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-application",
		Method:      http.MethodGet,
		Path:        "/api/applications/{id}",
		Summary:     "Get an application by ID",
		Tags:        []string{"Applications"},
		Security:    security,
		Middlewares: secured,
	}, func(ctx context.Context, input *ApplicationIDInput) (*GetApplicationOutput, error) {
		found, err := h.svc.Applications.Get(ctx, actorFrom(ctx), input.ID)
		if err != nil {
			return nil, h.toHumaError(ctx, err)
		}
		return &GetApplicationOutput{Body: ApplicationEnvelope{Success: true, Data: toApplicationResponse(found)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-application",
		Method:      http.MethodPut,
		Path:        "/api/applications/{id}",
		Summary:     "Change an application's status or description",
		Tags:        []string{"Applications"},
		Security:    security,
		Middlewares: secured,
	}, func(ctx context.Context, input *UpdateApplicationInput) (*UpdateApplicationOutput, error) {
		var in app.UpdateInput
		if input.Body.Status != nil {
			s := domain.Status(*input.Body.Status)
			in.Status = &s
		}
		in.Description = input.Body.Description

		res, err := h.svc.Applications.Update(ctx, actorFrom(ctx), input.ID, in)
		if err != nil {
			return nil, h.toHumaError(ctx, err)
		}
		return &UpdateApplicationOutput{Body: ApplicationEnvelope{
			Success: true,
			Message: res.Message,
			Data:    toApplicationResponse(res.Application),
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-application",
		Method:      http.MethodDelete,
		Path:        "/api/applications/{id}",
		Summary:     "Delete an application",
		Tags:        []string{"Applications"},
		Security:    security,
		Middlewares: secured,
	}, func(ctx context.Context, input *ApplicationIDInput) (*DeleteApplicationOutput, error) {
		if err := h.svc.Applications.Delete(ctx, actorFrom(ctx), input.ID); err != nil {
			return nil, h.toHumaError(ctx, err)
		}
		return &DeleteApplicationOutput{Body: MessageEnvelope{Success: true, Message: "Application deleted successfully"}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-application-payments",
		Method:      http.MethodGet,
		Path:        "/api/applications/{id}/payments",
		Summary:     "List rent payments generated for an application",
		Tags:        []string{"Applications"},
		Security:    security,
		Middlewares: secured,
	}, func(ctx context.Context, input *ApplicationIDInput) (*ListPaymentsOutput, error) {
		payments, err := h.svc.Applications.Payments(ctx, actorFrom(ctx), input.ID)
		if err != nil {
			return nil, h.toHumaError(ctx, err)
		}
		return &ListPaymentsOutput{Body: PaymentListEnvelope{Success: true, Data: toPaymentResponses(payments)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-application-reviews",
		Method:      http.MethodGet,
		Path:        "/api/applications/{id}/reviews",
		Summary:     "List reviews seeded for an application",
		Tags:        []string{"Applications"},
		Security:    security,
		Middlewares: secured,
	}, func(ctx context.Context, input *ApplicationIDInput) (*ListReviewsOutput, error) {
		reviews, err := h.svc.Applications.Reviews(ctx, actorFrom(ctx), input.ID)
		if err != nil {
			return nil, h.toHumaError(ctx, err)
		}
		return &ListReviewsOutput{Body: ReviewListEnvelope{Success: true, Data: toReviewResponses(reviews)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-review-summary",
		Method:      http.MethodGet,
		Path:        "/api/users/{id}/review-summary",
		Summary:     "Summarize the reviews a user received",
		Tags:        []string{"Reviews"},
		Security:    security,
		Middlewares: secured,
	}, func(ctx context.Context, input *ReviewSummaryInput) (*ReviewSummaryOutput, error) {
		summary, err := h.svc.Reviews.Summary(ctx, input.UserID)
		if err != nil {
			return nil, h.toHumaError(ctx, err)
		}
		return &ReviewSummaryOutput{Body: ReviewSummaryEnvelope{Success: true, Data: toReviewSummaryResponse(summary)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-notifications",
		Method:      http.MethodGet,
		Path:        "/api/notifications",
		Summary:     "List the caller's notifications, newest first",
		Tags:        []string{"Notifications"},
		Security:    security,
		Middlewares: secured,
	}, func(ctx context.Context, _ *struct{}) (*ListNotificationsOutput, error) {
		notes, err := h.svc.Inbox.List(ctx, actorFrom(ctx))
		if err != nil {
			return nil, h.toHumaError(ctx, err)
		}
		return &ListNotificationsOutput{Body: NotificationListEnvelope{Success: true, Data: toNotificationResponses(notes)}}, nil
	})
}

func listOutput(apps []domain.Application) *ListApplicationsOutput {
	return &ListApplicationsOutput{Body: ApplicationListEnvelope{
		Success: true,
		Count:   len(apps),
		Data:    toApplicationResponses(apps),
	}}
}
