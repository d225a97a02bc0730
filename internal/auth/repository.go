// Repository isolates the auth queries from business logic.

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Repository interface {
	// User operations
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	LinkProvider(ctx context.Context, user *User) error

	// Session operations
	CreateSession(ctx context.Context, session *Session) error
	GetSessionByToken(ctx context.Context, token string) (*Session, error)
	GetSessionByRefreshToken(ctx context.Context, refreshToken string) (*Session, error)
	DeleteSession(ctx context.Context, id int64) error
	DeleteSessionByToken(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

const userColumns = `id, email, password_hash, provider, provider_id, created_at, updated_at`

const sessionColumns = `id, user_id, token, refresh_token, expires_at, refresh_expires_at, created_at`

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// CreateUser inserts a new user and fills in its id.
func (r *postgresRepository) CreateUser(ctx context.Context, user *User) error {
	query := `
        INSERT INTO users (email, password_hash, provider, provider_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id`

	err := r.db.QueryRowxContext(
		ctx, query,
		user.Email, user.PasswordHash, user.Provider, user.ProviderID,
		user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetUserByID(ctx context.Context, id int64) (*User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *postgresRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *postgresRepository) getUser(ctx context.Context, query string, arg interface{}) (*User, error) {
	var user User
	err := r.db.GetContext(ctx, &user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// LinkProvider records the external identity on an existing account.
func (r *postgresRepository) LinkProvider(ctx context.Context, user *User) error {
	query := `
        UPDATE users SET provider = $1, provider_id = $2, updated_at = NOW()
        WHERE id = $3`

	if _, err := r.db.ExecContext(ctx, query, user.Provider, user.ProviderID, user.ID); err != nil {
		return fmt.Errorf("failed to link provider: %w", err)
	}
	return nil
}

func (r *postgresRepository) CreateSession(ctx context.Context, session *Session) error {
	query := `
        INSERT INTO sessions (user_id, token, refresh_token, expires_at, refresh_expires_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id`

	err := r.db.QueryRowxContext(
		ctx, query,
		session.UserID, session.Token, session.RefreshToken,
		session.ExpiresAt, session.RefreshExpiresAt, session.CreatedAt,
	).Scan(&session.ID)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSessionByToken finds the live session an access token belongs to.
func (r *postgresRepository) GetSessionByToken(ctx context.Context, token string) (*Session, error) {
	return r.getSession(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE token = $1 AND expires_at > NOW()`, token)
}

func (r *postgresRepository) GetSessionByRefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	return r.getSession(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE refresh_token = $1 AND refresh_expires_at > NOW()`, refreshToken)
}

func (r *postgresRepository) getSession(ctx context.Context, query string, arg interface{}) (*Session, error) {
	var session Session
	err := r.db.GetContext(ctx, &session, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

func (r *postgresRepository) DeleteSession(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteSessionByToken deletes a session by access token (for logout)
func (r *postgresRepository) DeleteSessionByToken(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions whose refresh token has lapsed.
func (r *postgresRepository) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE refresh_expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
