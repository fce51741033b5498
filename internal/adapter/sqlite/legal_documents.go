package sqlite

import (
	"context"
	"fmt"

	"github.com/neomorfeo/habitta/internal/domain"
)

// CreateLegalDocument attaches a document to an application. Uploads live
// outside the lifecycle core; this backs seeding and tests.
func (s *Store) CreateLegalDocument(ctx context.Context, doc domain.LegalDocument) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO legal_documents (id, id_application, type, url, created_at) VALUES (?, ?, ?, ?, ?)`,
		doc.ID, doc.ApplicationID, doc.Type, doc.URL, formatTime(doc.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting legal document: %w", err)
	}
	return nil
}

// LegalDocuments lists the documents attached to an application.
func (s *Store) LegalDocuments(ctx context.Context, applicationID string) ([]domain.LegalDocument, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, id_application, type, url, created_at FROM legal_documents
		 WHERE id_application = ? ORDER BY created_at, id`, applicationID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing legal documents: %w", err)
	}
	defer rows.Close()

	docs := make([]domain.LegalDocument, 0)
	for rows.Next() {
		var d domain.LegalDocument
		var createdAt string
		if err := rows.Scan(&d.ID, &d.ApplicationID, &d.Type, &d.URL, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning legal document row: %w", err)
		}
		d.CreatedAt = parseTime(createdAt)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
