package http

import (
	"time"

	"github.com/neomorfeo/habitta/internal/domain"
)

const timeLayout = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// ApplicationResponse is the API representation of an application.
type ApplicationResponse struct {
	ID               string           `json:"id" doc:"Unique identifier"`
	RenterID         string           `json:"id_renter" doc:"Applicant user ID"`
	PropertyID       string           `json:"id_property" doc:"Property ID"`
	Status           string           `json:"status" doc:"Lifecycle state"`
	Description      *string          `json:"description" doc:"Applicant's note"`
	StartDate        *string          `json:"start_date" doc:"Contract start, set on signing (ISO 8601)"`
	EndDate          *string          `json:"end_date" doc:"Contract end, set on signing (ISO 8601)"`
	RentAmount       *float64         `json:"rentAmount" doc:"Monthly rent, set on signing"`
	PaymentFrequency *string          `json:"paymentFrequency" doc:"Rent frequency, set on signing"`
	Version          int              `json:"version" doc:"Increments on every update"`
	AppliedAt        string           `json:"applied_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt        string           `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
	Renter           RenterResponse   `json:"renter"`
	Property         PropertyResponse `json:"property"`
}

type RenterResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type PropertyResponse struct {
	ID      string  `json:"id"`
	OwnerID string  `json:"id_owner"`
	Title   string  `json:"title"`
	Address string  `json:"address"`
	Price   float64 `json:"price"`
	Image   string  `json:"image,omitempty" doc:"First listing image"`
}

func toApplicationResponse(a domain.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:               a.ID,
		RenterID:         a.RenterID,
		PropertyID:       a.PropertyID,
		Status:           string(a.Status),
		Description:      a.Description,
		StartDate:        formatTimePtr(a.StartDate),
		EndDate:          formatTimePtr(a.EndDate),
		RentAmount:       a.RentAmount,
		PaymentFrequency: a.PaymentFrequency,
		Version:          a.Version,
		AppliedAt:        formatTime(a.AppliedAt),
		UpdatedAt:        formatTime(a.UpdatedAt),
		Renter: RenterResponse{
			ID:    a.Renter.ID,
			Name:  a.Renter.Name,
			Email: a.Renter.Email,
			Phone: a.Renter.Phone,
		},
		Property: PropertyResponse{
			ID:      a.Property.ID,
			OwnerID: a.Property.OwnerID,
			Title:   a.Property.Title,
			Address: a.Property.Address,
			Price:   a.Property.Price,
			Image:   a.Property.Image,
		},
	}
}

func toApplicationResponses(apps []domain.Application) []ApplicationResponse {
	out := make([]ApplicationResponse, len(apps))
	for i, a := range apps {
		out[i] = toApplicationResponse(a)
	}
	return out
}

// PaymentResponse is the API representation of a generated payment.
type PaymentResponse struct {
	ID            string  `json:"id"`
	PayerID       string  `json:"id_payer"`
	ReceiverID    string  `json:"id_receiver"`
	RelatedType   string  `json:"related_type"`
	RelatedID     string  `json:"id_related"`
	Concept       string  `json:"concept"`
	Description   string  `json:"description"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	DueDate       string  `json:"due_date"`
	ReferenceCode string  `json:"reference_code"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"created_at"`
}

func toPaymentResponses(payments []domain.Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i, p := range payments {
		out[i] = PaymentResponse{
			ID:            p.ID,
			PayerID:       p.PayerID,
			ReceiverID:    p.ReceiverID,
			RelatedType:   p.RelatedType,
			RelatedID:     p.RelatedID,
			Concept:       p.Concept,
			Description:   p.Description,
			Amount:        p.Amount,
			Currency:      p.Currency,
			DueDate:       formatTime(p.DueDate),
			ReferenceCode: p.ReferenceCode,
			Status:        p.Status,
			CreatedAt:     formatTime(p.CreatedAt),
		}
	}
	return out
}

// ReviewResponse is the API representation of a review.
type ReviewResponse struct {
	ID            string  `json:"id"`
	AuthorID      string  `json:"id_author"`
	ReceiverID    string  `json:"id_receiver"`
	ApplicationID string  `json:"id_application"`
	Rating        *bool   `json:"rating" doc:"Null until the author rates"`
	Comment       *string `json:"comment"`
	ContextType   string  `json:"context_type"`
	Weight        float64 `json:"weight"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"created_at"`
}

func toReviewResponses(reviews []domain.Review) []ReviewResponse {
	out := make([]ReviewResponse, len(reviews))
	for i, r := range reviews {
		out[i] = ReviewResponse{
			ID:            r.ID,
			AuthorID:      r.AuthorID,
			ReceiverID:    r.ReceiverID,
			ApplicationID: r.ApplicationID,
			Rating:        r.Rating,
			Comment:       r.Comment,
			ContextType:   string(r.ContextType),
			Weight:        r.Weight,
			Status:        string(r.Status),
			CreatedAt:     formatTime(r.CreatedAt),
		}
	}
	return out
}

// ReviewSummaryResponse aggregates the rated reviews a user received.
type ReviewSummaryResponse struct {
	UserID             string         `json:"id_user"`
	TotalReviews       int            `json:"total_reviews"`
	PositivePercentage float64        `json:"positive_percentage" doc:"Weighted share of positive ratings, 0-100"`
	ContextCounts      map[string]int `json:"context_counts"`
}

func toReviewSummaryResponse(s domain.ReviewSummary) ReviewSummaryResponse {
	counts := make(map[string]int, len(s.ContextCounts))
	for k, v := range s.ContextCounts {
		counts[string(k)] = v
	}
	return ReviewSummaryResponse{
		UserID:             s.UserID,
		TotalReviews:       s.TotalReviews,
		PositivePercentage: s.PositivePercentage,
		ContextCounts:      counts,
	}
}

// NotificationResponse is one inbox entry.
type NotificationResponse struct {
	ID            string `json:"id"`
	ApplicationID string `json:"id_application"`
	Kind          string `json:"kind"`
	Title         string `json:"title"`
	Body          string `json:"body"`
	CreatedAt     string `json:"created_at"`
}

func toNotificationResponses(notes []domain.Notification) []NotificationResponse {
	out := make([]NotificationResponse, len(notes))
	for i, n := range notes {
		out[i] = NotificationResponse{
			ID:            n.ID,
			ApplicationID: n.ApplicationID,
			Kind:          string(n.Kind),
			Title:         n.Title,
			Body:          n.Body,
			CreatedAt:     formatTime(n.CreatedAt),
		}
	}
	return out
}

// --- Envelopes ---

type ApplicationEnvelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    ApplicationResponse `json:"data"`
}

type ApplicationListEnvelope struct {
	Success bool                  `json:"success"`
	Count   int                   `json:"count"`
	Data    []ApplicationResponse `json:"data"`
}

type PaymentListEnvelope struct {
	Success bool              `json:"success"`
	Data    []PaymentResponse `json:"data"`
}

type ReviewListEnvelope struct {
	Success bool             `json:"success"`
	Data    []ReviewResponse `json:"data"`
}

type ReviewSummaryEnvelope struct {
	Success bool                  `json:"success"`
	Data    ReviewSummaryResponse `json:"data"`
}

type NotificationListEnvelope struct {
	Success bool                   `json:"success"`
	Data    []NotificationResponse `json:"data"`
}

type MessageEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
