package app

import (
	"context"
	"fmt"

	"github.com/neomorfeo/habitta/internal/domain"
)

// ReviewService answers reputation queries over seeded reviews.
type ReviewService struct {
	store domain.Store
}

// NewReviewService creates a ReviewService.
func NewReviewService(store domain.Store) *ReviewService {
	return &ReviewService{store: store}
}

// Summary aggregates the rated reviews userID received.
func (s *ReviewService) Summary(ctx context.Context, userID string) (domain.ReviewSummary, error) {
	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		return domain.ReviewSummary{}, err
	}
	reviews, err := s.store.Reviews().ListByReceiver(ctx, userID)
	if err != nil {
		return domain.ReviewSummary{}, fmt.Errorf("listing reviews: %w", err)
	}
	return domain.SummarizeReviews(userID, reviews), nil
}
