package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *Config {
	return &Config{
		JWTSecret:          "test-secret-at-least-16",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		BCryptCost:         bcrypt.MinCost,
	}
}

func newTestService(t *testing.T, limiter AttemptLimiter, google GoogleVerifier) (Service, *memoryRepository) {
	t.Helper()
	repo := newMemoryRepository()
	if limiter == nil {
		limiter = NewAttemptLimiter(nil, 0, 0)
	}
	return NewService(repo, limiter, google, testConfig(), zap.NewNop()), repo
}

func signup(t *testing.T, svc Service, email string) *AuthResponse {
	t.Helper()
	resp, err := svc.Signup(context.Background(), &SignupRequest{
		Email: email, Password: "password123", ConfirmPassword: "password123",
	})
	require.NoError(t, err)
	return resp
}

func TestSignupAndSignin(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()

	created := signup(t, svc, " Alice@Example.com ")
	require.Equal(t, "alice@example.com", created.User.Email)
	require.Equal(t, "Bearer", created.TokenType)

	resp, err := svc.Signin(ctx, &SigninRequest{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)
	require.Equal(t, created.User.ID, resp.User.ID)

	claims, err := svc.ValidateToken(ctx, resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, created.User.ID, claims.UserID)

	_, err = svc.Signin(ctx, &SigninRequest{Email: "alice@example.com", Password: "nope"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Signup(ctx, &SignupRequest{Email: "alice@example.com", Password: "password123", ConfirmPassword: "password123"})
	require.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestSigninLockoutWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	svc, _ := newTestService(t, NewAttemptLimiter(client, 2, time.Minute), nil)
	ctx := context.Background()
	signup(t, svc, "bob@example.com")

	for i := 0; i < 2; i++ {
		_, err := svc.Signin(ctx, &SigninRequest{Email: "bob@example.com", Password: "wrong"})
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}
	_, err := svc.Signin(ctx, &SigninRequest{Email: "bob@example.com", Password: "password123"})
	require.ErrorIs(t, err, ErrTooManyAttempts)
	require.True(t, mr.Exists("failed:bob@example.com"))

	mr.FastForward(2 * time.Minute)
	_, err = svc.Signin(ctx, &SigninRequest{Email: "bob@example.com", Password: "password123"})
	require.NoError(t, err)
	require.False(t, mr.Exists("failed:bob@example.com"))
}

func TestRefreshRotatesTokens(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()
	first := signup(t, svc, "carol@example.com")

	second, err := svc.RefreshToken(ctx, first.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = svc.RefreshToken(ctx, first.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.RefreshToken(ctx, second.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutRevokesAccessToken(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()
	resp := signup(t, svc, "dan@example.com")

	require.NoError(t, svc.Logout(ctx, resp.AccessToken))
	_, err := svc.ValidateToken(ctx, resp.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsRefreshToken(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	resp := signup(t, svc, "erin@example.com")

	_, err := svc.ValidateToken(context.Background(), resp.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestGoogleAuth(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		svc, _ := newTestService(t, nil, nil)
		_, err := svc.GoogleAuth(ctx, &GoogleAuthRequest{IDToken: "x"})
		require.ErrorIs(t, err, ErrGoogleDisabled)
	})

	t.Run("creates account", func(t *testing.T) {
		svc, repo := newTestService(t, nil, fakeGoogle{identity: &GoogleIdentity{Email: "Gina@Example.com", Subject: "g-1"}})
		resp, err := svc.GoogleAuth(ctx, &GoogleAuthRequest{IDToken: "x"})
		require.NoError(t, err)
		require.Equal(t, "google", resp.User.Provider)

		stored, err := repo.GetUserByEmail(ctx, "gina@example.com")
		require.NoError(t, err)
		require.Nil(t, stored.PasswordHash)
	})

	t.Run("links password account", func(t *testing.T) {
		svc, repo := newTestService(t, nil, fakeGoogle{identity: &GoogleIdentity{Email: "hal@example.com", Subject: "g-2"}})
		created := signup(t, svc, "hal@example.com")

		resp, err := svc.GoogleAuth(ctx, &GoogleAuthRequest{IDToken: "x"})
		require.NoError(t, err)
		require.Equal(t, created.User.ID, resp.User.ID)

		stored, err := repo.GetUserByID(ctx, created.User.ID)
		require.NoError(t, err)
		require.Equal(t, "g-2", *stored.ProviderID)
		require.NotNil(t, stored.PasswordHash)
	})

	t.Run("social account cannot use password", func(t *testing.T) {
		svc, _ := newTestService(t, nil, fakeGoogle{identity: &GoogleIdentity{Email: "ivy@example.com", Subject: "g-3"}})
		_, err := svc.GoogleAuth(ctx, &GoogleAuthRequest{IDToken: "x"})
		require.NoError(t, err)

		_, err = svc.Signin(ctx, &SigninRequest{Email: "ivy@example.com", Password: "password123"})
		require.ErrorIs(t, err, ErrSocialAccount)
	})
}
