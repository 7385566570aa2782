package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/plate-notify/internal/model"
)

type UserRepository struct {
	db *Database
}

func NewUserRepository(db *Database) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user with an already hashed password. The unique index on
// email is the authoritative duplicate check; a violation surfaces as
// model.ErrConflict.
func (r *UserRepository) Create(ctx context.Context, name, email, passwordHash string) (int64, error) {
	var id int64
	query := `INSERT INTO users (name, email, password) VALUES ($1, $2, $3) RETURNING id`
	err := r.db.QueryRowxContext(ctx, query, name, email, passwordHash).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("email %q: %w", email, model.ErrConflict)
		}
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	query := `SELECT id, name, email, password FROM users WHERE email = $1`
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}

// FindByID never loads the password hash.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	query := `SELECT id, name, email FROM users WHERE id = $1`
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return &user, nil
}

// Update overwrites name, email and password hash.
func (r *UserRepository) Update(ctx context.Context, id int64, name, email, passwordHash string) error {
	query := `UPDATE users SET name = $1, email = $2, password = $3 WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, name, email, passwordHash, id)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email %q: %w", email, model.ErrConflict)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %d: %w", id, model.ErrNotFound)
	}
	return nil
}
