package sqlite

import (
	"context"
	"fmt"

	"github.com/neomorfeo/habitta/internal/domain"
)

type paymentRepo struct {
	q querier
}

func (r paymentRepo) Create(ctx context.Context, p domain.Payment) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO payments (id, id_payer, id_receiver, related_type, id_related, concept, description,
		 amount, currency, due_date, reference_code, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.PayerID, p.ReceiverID, p.RelatedType, p.RelatedID, p.Concept, p.Description,
		p.Amount, p.Currency, formatTime(p.DueDate), p.ReferenceCode, p.Status, formatTime(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting payment: %w", err)
	}
	return nil
}

func (r paymentRepo) ListByRelated(ctx context.Context, relatedType, relatedID string) ([]domain.Payment, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, id_payer, id_receiver, related_type, id_related, concept, description,
		        amount, currency, due_date, reference_code, status, created_at
		 FROM payments WHERE related_type = ? AND id_related = ?
		 ORDER BY created_at, id`, relatedType, relatedID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0)
	for rows.Next() {
		var p domain.Payment
		var dueDate, createdAt string
		if err := rows.Scan(&p.ID, &p.PayerID, &p.ReceiverID, &p.RelatedType, &p.RelatedID, &p.Concept,
			&p.Description, &p.Amount, &p.Currency, &dueDate, &p.ReferenceCode, &p.Status, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning payment row: %w", err)
		}
		p.DueDate = parseTime(dueDate)
		p.CreatedAt = parseTime(createdAt)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
