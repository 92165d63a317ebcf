package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/safar/go-shop-api/internal/database"
	"github.com/safar/go-shop-api/internal/models"
)

type UpdateUserRequest struct {
	Username     *string
	Email        *string
	PasswordHash *string
}

func CreateUser(ctx context.Context, db *sql.DB, username, email, passwordHash string, isAdmin bool) (*models.User, error) {
	user := &models.User{}

	query := `
		INSERT INTO users (username, email, password_hash, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, username, email, is_admin, created_at, updated_at`

	err := db.QueryRowContext(ctx, query, username, email, passwordHash, isAdmin).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, database.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func GetUser(ctx context.Context, db *sql.DB, id int64) (*models.User, error) {
	user := &models.User{}

	query := `
		SELECT id, username, email, is_admin, COALESCE(address, ''), created_at, updated_at
		FROM users
		WHERE id = $1`

	err := db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.IsAdmin,
		&user.Address,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}

// GetUserByUsername loads the credential row for login. The password hash is
// included; callers must not serialize it.
func GetUserByUsername(ctx context.Context, db *sql.DB, username string) (*models.User, error) {
	user := &models.User{}

	query := `
		SELECT id, username, email, password_hash, is_admin, created_at, updated_at
		FROM users
		WHERE username = $1`

	err := db.QueryRowContext(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}

	return user, nil
}

// UserExists backs the auth middleware: a token is only as good as the row
// behind it.
func UserExists(ctx context.Context, db *sql.DB, id int64) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

// UpdateUser applies a partial profile update; unset fields keep their
// current value.
func UpdateUser(ctx context.Context, db *sql.DB, id int64, req UpdateUserRequest) (*models.User, error) {
	user := &models.User{}

	query := `
		UPDATE users
		SET username = COALESCE($1, username),
		    email = COALESCE($2, email),
		    password_hash = COALESCE($3, password_hash),
		    updated_at = NOW()
		WHERE id = $4
		RETURNING id, username, email, is_admin, created_at, updated_at`

	err := db.QueryRowContext(ctx, query, req.Username, req.Email, req.PasswordHash, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrUserNotFound
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, database.ErrEmailTaken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	return user, nil
}
