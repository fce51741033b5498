package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/neomorfeo/habitta/internal/domain"
)

type propertyRepo struct {
	q querier
}

func (r propertyRepo) GetByID(ctx context.Context, id string) (domain.Property, error) {
	var p domain.Property
	var status, createdAt string

	err := r.q.QueryRowContext(ctx,
		`SELECT id, id_owner, title, address, price, publication_status, created_at
		 FROM properties WHERE id = ?`, id,
	).Scan(&p.ID, &p.OwnerID, &p.Title, &p.Address, &p.Price, &status, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Property{}, domain.ErrPropertyNotFound
		}
		return domain.Property{}, fmt.Errorf("scanning property: %w", err)
	}
	p.PublicationStatus = domain.PublicationStatus(status)
	p.CreatedAt = parseTime(createdAt)

	images, err := r.images(ctx, id)
	if err != nil {
		return domain.Property{}, err
	}
	p.Images = images

	return p, nil
}

func (r propertyRepo) images(ctx context.Context, propertyID string) ([]string, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT url FROM property_images WHERE id_property = ? ORDER BY position`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("listing property images: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scanning property image: %w", err)
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}

func (r propertyRepo) SetPublicationStatus(ctx context.Context, id string, status domain.PublicationStatus) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE properties SET publication_status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("updating publication status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrPropertyNotFound
	}
	return nil
}

// CreateProperty inserts a property and its images in listing order. Listing
// management lives outside the lifecycle core; this backs seeding and tests.
func (s *Store) CreateProperty(ctx context.Context, p domain.Property) error {
	return s.InTx(ctx, func(tx domain.Store) error {
		q := tx.(*Store).q
		if p.PublicationStatus == "" {
			p.PublicationStatus = domain.PublicationPublished
		}
		if _, err := q.ExecContext(ctx,
			`INSERT INTO properties (id, id_owner, title, address, price, publication_status, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.OwnerID, p.Title, p.Address, p.Price, string(p.PublicationStatus), formatTime(p.CreatedAt),
		); err != nil {
			return fmt.Errorf("inserting property: %w", err)
		}
		for i, url := range p.Images {
			if _, err := q.ExecContext(ctx,
				`INSERT INTO property_images (id_property, position, url) VALUES (?, ?, ?)`,
				p.ID, i, url,
			); err != nil {
				return fmt.Errorf("inserting property image: %w", err)
			}
		}
		return nil
	})
}
