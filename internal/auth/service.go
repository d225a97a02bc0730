// Service layer contains all business logic for authentication.

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/imadgeboyega/datewrapped/internal/common/utils"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionNotFound    = errors.New("session not found or expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidToken       = utils.ErrInvalidToken
	ErrTooManyAttempts    = errors.New("too many attempts")
	ErrSocialAccount      = errors.New("this account uses social login")
	ErrGoogleDisabled     = errors.New("google sign-in is disabled")
	ErrInvalidGoogleToken = errors.New("invalid Google token")
)

type Service interface {
	Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error)
	Signin(ctx context.Context, req *SigninRequest) (*AuthResponse, error)
	GoogleAuth(ctx context.Context, req *GoogleAuthRequest) (*AuthResponse, error)

	// Token management
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error)
	ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error)
	Logout(ctx context.Context, token string) error
	CleanupExpiredSessions(ctx context.Context) (int64, error)

	GetUserByID(ctx context.Context, userID int64) (*User, error)
}

// Config holds service configuration
type Config struct {
	JWTSecret          string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	BCryptCost         int
}

type service struct {
	repo    Repository
	limiter AttemptLimiter
	google  GoogleVerifier
	config  *Config
	logger  *zap.Logger
}

// NewService wires the auth service. google may be nil, which disables
// Google sign-in.
func NewService(repo Repository, limiter AttemptLimiter, google GoogleVerifier, config *Config, logger *zap.Logger) Service {
	return &service{
		repo:    repo,
		limiter: limiter,
		google:  google,
		config:  config,
		logger:  logger.Named("auth"),
	}
}

// Signup creates a password account and signs it in.
func (s *service) Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BCryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hash := string(hashed)

	now := time.Now()
	user := &User{
		Email:        email,
		PasswordHash: &hash,
		Provider:     "local",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user signed up", zap.Int64("user_id", user.ID))
	return s.createAuthSession(ctx, user)
}

func (s *service) Signin(ctx context.Context, req *SigninRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)

	blocked, err := s.limiter.Blocked(ctx, email)
	if err != nil {
		s.logger.Warn("attempt limiter unavailable", zap.Error(err))
	}
	if blocked {
		return nil, ErrTooManyAttempts
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		s.recordFailedAttempt(ctx, email)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if user.PasswordHash == nil {
		return nil, ErrSocialAccount
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		s.recordFailedAttempt(ctx, email)
		return nil, ErrInvalidCredentials
	}

	if err := s.limiter.Reset(ctx, email); err != nil {
		s.logger.Warn("reset failed attempts", zap.Error(err))
	}
	return s.createAuthSession(ctx, user)
}

// GoogleAuth signs in with a Google ID token, creating the account on first
// use and linking it to an existing password account with the same email.
func (s *service) GoogleAuth(ctx context.Context, req *GoogleAuthRequest) (*AuthResponse, error) {
	if s.google == nil {
		return nil, ErrGoogleDisabled
	}

	identity, err := s.google.Verify(ctx, req.IDToken)
	if err != nil {
		return nil, err
	}
	email := normalizeEmail(identity.Email)

	user, err := s.repo.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrUserNotFound):
		now := time.Now()
		user = &User{
			Email:      email,
			Provider:   "google",
			ProviderID: &identity.Subject,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.repo.CreateUser(ctx, user); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	case user.ProviderID == nil:
		user.Provider = "google"
		user.ProviderID = &identity.Subject
		if err := s.repo.LinkProvider(ctx, user); err != nil {
			return nil, err
		}
	}

	return s.createAuthSession(ctx, user)
}

// RefreshToken rotates the token pair. The old session is removed so each
// refresh token works once.
func (s *service) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := utils.ValidateJWT(refreshToken, s.config.JWTSecret)
	if err != nil || claims.Type != utils.TokenTypeRefresh {
		return nil, ErrInvalidToken
	}

	session, err := s.repo.GetSessionByRefreshToken(ctx, refreshToken)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeleteSession(ctx, session.ID); err != nil {
		return nil, err
	}
	return s.createAuthSession(ctx, user)
}

// ValidateToken accepts an access token whose session has not been signed
// out.
func (s *service) ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error) {
	claims, err := utils.ValidateJWT(token, s.config.JWTSecret)
	if err != nil {
		return nil, err
	}
	if claims.Type != utils.TokenTypeAccess {
		return nil, ErrInvalidToken
	}
	if _, err := s.repo.GetSessionByToken(ctx, token); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return claims, nil
}

func (s *service) Logout(ctx context.Context, token string) error {
	return s.repo.DeleteSessionByToken(ctx, token)
}

func (s *service) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredSessions(ctx)
}

func (s *service) GetUserByID(ctx context.Context, userID int64) (*User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

// Helper functions

func (s *service) createAuthSession(ctx context.Context, user *User) (*AuthResponse, error) {
	accessToken, err := utils.GenerateJWT(
		utils.NewClaims(user.ID, user.Email, utils.TokenTypeAccess, s.config.AccessTokenExpiry),
		s.config.JWTSecret,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := utils.GenerateJWT(
		utils.NewClaims(user.ID, user.Email, utils.TokenTypeRefresh, s.config.RefreshTokenExpiry),
		s.config.JWTSecret,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	now := time.Now()
	session := &Session{
		UserID:           user.ID,
		Token:            accessToken,
		RefreshToken:     refreshToken,
		ExpiresAt:        now.Add(s.config.AccessTokenExpiry),
		RefreshExpiresAt: now.Add(s.config.RefreshTokenExpiry),
		CreatedAt:        now,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.config.AccessTokenExpiry.Seconds()),
		TokenType:    "Bearer",
	}, nil
}

func (s *service) recordFailedAttempt(ctx context.Context, identifier string) {
	if err := s.limiter.RecordFailure(ctx, identifier); err != nil {
		s.logger.Warn("record failed attempt", zap.Error(err))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
