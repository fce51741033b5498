package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/neomorfeo/habitta/internal/domain"
)

type userRepo struct {
	q querier
}

func (r userRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	var u domain.User
	var role, createdAt string

	err := r.q.QueryRowContext(ctx,
		`SELECT id, name, email, phone, role, push_token, created_at FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &role, &u.PushToken, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("scanning user: %w", err)
	}
	u.Role = domain.Role(role)
	u.CreatedAt = parseTime(createdAt)
	return u, nil
}

// CreateUser inserts an account. Account management lives outside the
// lifecycle core; this backs seeding and tests.
func (s *Store) CreateUser(ctx context.Context, u domain.User) error {
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO users (id, name, email, phone, role, push_token, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.Phone, string(u.Role), u.PushToken, formatTime(u.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}
