// Data structures used by the authentication system.

package auth

import "time"

// User is an account. PasswordHash is nil for accounts created through
// Google sign-in.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash *string   `json:"-" db:"password_hash"`
	Provider     string    `json:"provider" db:"provider"` // "local" or "google"
	ProviderID   *string   `json:"provider_id,omitempty" db:"provider_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Session is one issued token pair. Rotating the refresh token replaces the
// row; signing out deletes it.
type Session struct {
	ID               int64     `json:"id" db:"id"`
	UserID           int64     `json:"user_id" db:"user_id"`
	Token            string    `json:"token" db:"token"`
	RefreshToken     string    `json:"refresh_token" db:"refresh_token"`
	ExpiresAt        time.Time `json:"expires_at" db:"expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at" db:"refresh_expires_at"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

type SignupRequest struct {
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required,min=8,max=100"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// GoogleAuthRequest carries the ID token obtained by the client.
type GoogleAuthRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse is what we send back after successful authentication
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}
