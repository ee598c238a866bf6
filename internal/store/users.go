package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tinchoocaltana1/becacnc/internal/models"
)

// GetUserByUsername returns nil, nil when no such user exists.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	row := s.DB.QueryRowContext(ctx, s.q(`SELECT id, username, password FROM users WHERE username = ?`), username)

	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.Password); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user %q: %w", username, err)
	}
	return &user, nil
}

// CreateUser is mainly for seeding the initial admin
func (s *Store) CreateUser(ctx context.Context, username, hashedPassword string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	_, err := s.DB.ExecContext(ctx, s.q(`INSERT INTO users (username, password) VALUES (?, ?)`), username, hashedPassword)
	return err
}
