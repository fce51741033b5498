package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/neomorfeo/habitta/internal/domain"
)

type applicationRepo struct {
	q querier
}

// applicationSelect joins the renter and property summaries, including the
// property's first image.
const applicationSelect = `
SELECT a.id, a.id_renter, a.id_property, a.status, a.description,
       a.start_date, a.end_date, a.rent_amount, a.payment_frequency,
       a.version, a.applied_at, a.updated_at,
       u.name, u.email, u.phone,
       p.id_owner, p.title, p.address, p.price,
       (SELECT i.url FROM property_images i WHERE i.id_property = p.id ORDER BY i.position LIMIT 1)
FROM applications a
JOIN users u ON u.id = a.id_renter
JOIN properties p ON p.id = a.id_property`

func (r applicationRepo) Create(ctx context.Context, app domain.Application) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO applications (id, id_renter, id_property, status, description,
		 start_date, end_date, rent_amount, payment_frequency, version, applied_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		app.ID, app.RenterID, app.PropertyID, string(app.Status), nullString(app.Description),
		nullTime(app.StartDate), nullTime(app.EndDate), nullFloat(app.RentAmount), nullString(app.PaymentFrequency),
		app.Version, formatTime(app.AppliedAt), formatTime(app.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.DuplicateApplicationError{RenterID: app.RenterID, PropertyID: app.PropertyID}
		}
		return fmt.Errorf("inserting application: %w", err)
	}
	return nil
}

func (r applicationRepo) GetByID(ctx context.Context, id string) (domain.Application, error) {
	return scanApplication(r.q.QueryRowContext(ctx, applicationSelect+` WHERE a.id = ?`, id))
}

func (r applicationRepo) FindByRenterAndProperty(ctx context.Context, renterID, propertyID string) (domain.Application, error) {
	return scanApplication(r.q.QueryRowContext(ctx,
		applicationSelect+` WHERE a.id_renter = ? AND a.id_property = ?`, renterID, propertyID,
	))
}

func (r applicationRepo) List(ctx context.Context, filter domain.ListFilter) ([]domain.Application, error) {
	query := applicationSelect + ` WHERE 1 = 1`
	var args []any

	if filter.RenterID != "" {
		query += ` AND a.id_renter = ?`
		args = append(args, filter.RenterID)
	}
	if filter.PropertyID != "" {
		query += ` AND a.id_property = ?`
		args = append(args, filter.PropertyID)
	}
	if filter.OwnerID != "" {
		query += ` AND p.id_owner = ?`
		args = append(args, filter.OwnerID)
	}
	if filter.Status != nil {
		query += ` AND a.status = ?`
		args = append(args, string(*filter.Status))
	}

	query += ` ORDER BY a.applied_at DESC, a.id`

	switch {
	case filter.Limit > 0:
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	case filter.Offset > 0:
		// SQLite only accepts OFFSET after a LIMIT.
		query += ` LIMIT -1`
	}

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing applications: %w", err)
	}
	defer rows.Close()

	apps := make([]domain.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}

	return apps, rows.Err()
}

func (r applicationRepo) Update(ctx context.Context, app domain.Application) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE applications
		 SET status = ?, description = ?, start_date = ?, end_date = ?, rent_amount = ?,
		     payment_frequency = ?, updated_at = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		string(app.Status), nullString(app.Description), nullTime(app.StartDate), nullTime(app.EndDate),
		nullFloat(app.RentAmount), nullString(app.PaymentFrequency), formatTime(app.UpdatedAt),
		app.ID, app.Version,
	)
	if err != nil {
		return fmt.Errorf("updating application: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return r.missingOrStale(ctx, app.ID)
	}

	return nil
}

// missingOrStale tells a vanished row from a version mismatch.
func (r applicationRepo) missingOrStale(ctx context.Context, id string) error {
	var one int
	err := r.q.QueryRowContext(ctx, `SELECT 1 FROM applications WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrApplicationNotFound
	}
	if err != nil {
		return fmt.Errorf("checking application: %w", err)
	}
	return domain.ErrStaleApplication
}

func (r applicationRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM legal_documents WHERE id_application = ?`, id); err != nil {
		return fmt.Errorf("deleting legal documents: %w", err)
	}

	result, err := r.q.ExecContext(ctx, `DELETE FROM applications WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting application: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrApplicationNotFound
	}

	return nil
}

func scanApplication(row scanner) (domain.Application, error) {
	var (
		a                          domain.Application
		status, appliedAt, updated string
		description, freq, image   sql.NullString
		startDate, endDate         sql.NullString
		rent                       sql.NullFloat64
	)

	err := row.Scan(
		&a.ID, &a.RenterID, &a.PropertyID, &status, &description,
		&startDate, &endDate, &rent, &freq,
		&a.Version, &appliedAt, &updated,
		&a.Renter.Name, &a.Renter.Email, &a.Renter.Phone,
		&a.Property.OwnerID, &a.Property.Title, &a.Property.Address, &a.Property.Price,
		&image,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Application{}, domain.ErrApplicationNotFound
		}
		return domain.Application{}, fmt.Errorf("scanning application: %w", err)
	}

	a.Status = domain.Status(status)
	a.Description = stringPtr(description)
	a.StartDate = timePtr(startDate)
	a.EndDate = timePtr(endDate)
	a.RentAmount = floatPtr(rent)
	a.PaymentFrequency = stringPtr(freq)
	a.AppliedAt = parseTime(appliedAt)
	a.UpdatedAt = parseTime(updated)
	a.Renter.ID = a.RenterID
	a.Property.ID = a.PropertyID
	a.Property.Image = image.String

	return a, nil
}
