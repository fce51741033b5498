package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/neomorfeo/habitta/internal/domain"
)

type reviewRepo struct {
	q querier
}

func (r reviewRepo) CreateMany(ctx context.Context, reviews []domain.Review) error {
	for _, rv := range reviews {
		var rating sql.NullBool
		if rv.Rating != nil {
			rating = sql.NullBool{Bool: *rv.Rating, Valid: true}
		}
		if _, err := r.q.ExecContext(ctx,
			`INSERT INTO reviews (id, id_author, id_receiver, id_application, rating, comment,
			 context_type, weight, status, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rv.ID, rv.AuthorID, rv.ReceiverID, rv.ApplicationID, rating, nullString(rv.Comment),
			string(rv.ContextType), rv.Weight, string(rv.Status), formatTime(rv.CreatedAt),
		); err != nil {
			return fmt.Errorf("inserting review: %w", err)
		}
	}
	return nil
}

const reviewSelect = `SELECT id, id_author, id_receiver, id_application, rating, comment,
       context_type, weight, status, created_at FROM reviews`

func (r reviewRepo) ListByApplication(ctx context.Context, applicationID string) ([]domain.Review, error) {
	return r.list(ctx, reviewSelect+` WHERE id_application = ? ORDER BY created_at, id`, applicationID)
}

func (r reviewRepo) ListByReceiver(ctx context.Context, userID string) ([]domain.Review, error) {
	return r.list(ctx, reviewSelect+` WHERE id_receiver = ? ORDER BY created_at, id`, userID)
}

func (r reviewRepo) list(ctx context.Context, query string, args ...any) ([]domain.Review, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0)
	for rows.Next() {
		var (
			rv                     domain.Review
			applicationID, comment sql.NullString
			rating                 sql.NullBool
			ctxType, status, at    string
		)
		if err := rows.Scan(&rv.ID, &rv.AuthorID, &rv.ReceiverID, &applicationID, &rating, &comment,
			&ctxType, &rv.Weight, &status, &at); err != nil {
			return nil, fmt.Errorf("scanning review row: %w", err)
		}
		rv.ApplicationID = applicationID.String
		if rating.Valid {
			v := rating.Bool
			rv.Rating = &v
		}
		rv.Comment = stringPtr(comment)
		rv.ContextType = domain.ReviewContext(ctxType)
		rv.Status = domain.ReviewStatus(status)
		rv.CreatedAt = parseTime(at)
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

// RateReview completes a pending review. Rating happens outside the lifecycle
// core; this backs seeding and tests.
func (s *Store) RateReview(ctx context.Context, id string, rating bool, comment *string) error {
	result, err := s.q.ExecContext(ctx,
		`UPDATE reviews SET rating = ?, comment = ?, status = ? WHERE id = ?`,
		rating, nullString(comment), string(domain.ReviewCompleted), id,
	)
	if err != nil {
		return fmt.Errorf("rating review: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("review %q not found", id)
	}
	return nil
}
