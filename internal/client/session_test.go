package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/imadgeboyega/datewrapped/internal/auth"
	"github.com/imadgeboyega/datewrapped/internal/common/apperr"
)

type fakeAuth struct {
	mu         sync.Mutex
	refreshes  int
	signOuts   int
	expiresIn  int
	refreshErr error
	signOutErr error
}

func (f *fakeAuth) response(token string) *auth.AuthResponse {
	return &auth.AuthResponse{
		User:         &auth.User{ID: 42, Email: "a@b.io"},
		AccessToken:  "access-" + token,
		RefreshToken: "refresh-" + token,
		ExpiresIn:    f.expiresIn,
		TokenType:    "Bearer",
	}
}

func (f *fakeAuth) SignUp(_ context.Context, email, _ string) (*auth.AuthResponse, error) {
	return f.response("signup"), nil
}

func (f *fakeAuth) SignIn(_ context.Context, _, password string) (*auth.AuthResponse, error) {
	if password != "password123" {
		return nil, apperr.Auth("fake.SignIn")
	}
	return f.response("signin"), nil
}

func (f *fakeAuth) SignInWithGoogle(context.Context, string) (*auth.AuthResponse, error) {
	return f.response("google"), nil
}

func (f *fakeAuth) Refresh(_ context.Context, refreshToken string) (*auth.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	f.refreshes++
	resp := f.response("refreshed")
	resp.User = nil
	return resp, nil
}

func (f *fakeAuth) SignOut(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOuts++
	return f.signOutErr
}

func (f *fakeAuth) refreshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshes
}

func recordEvents(h *SessionHolder) func() []Event {
	var mu sync.Mutex
	var events []Event
	h.Subscribe(func(ev Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})
	return func() []Event {
		mu.Lock()
		defer mu.Unlock()
		return append([]Event(nil), events...)
	}
}

func TestSessionSignInAndOut(t *testing.T) {
	api := &fakeAuth{expiresIn: 3600}
	store := &MemoryTokenStore{}
	h := NewSessionHolder(api, store, zap.NewNop())
	events := recordEvents(h)
	ctx := context.Background()

	require.Zero(t, h.UserID())
	require.Error(t, h.SignIn(ctx, "a@b.io", "wrong"))
	require.Zero(t, h.UserID())

	require.NoError(t, h.SignIn(ctx, "a@b.io", "password123"))
	require.Equal(t, int64(42), h.UserID())
	require.Equal(t, "access-signin", h.AccessToken())
	saved, _ := store.Load()
	require.Equal(t, "refresh-signin", saved.RefreshToken)

	require.NoError(t, h.Refresh(ctx))
	require.Equal(t, "access-refreshed", h.AccessToken())
	require.Equal(t, int64(42), h.UserID())

	api.signOutErr = errors.New("offline")
	require.NoError(t, h.SignOut(ctx))
	require.Zero(t, h.UserID())
	require.Empty(t, h.AccessToken())
	saved, _ = store.Load()
	require.Nil(t, saved)

	require.Equal(t, []Event{SignedIn, TokenRefreshed, SignedOut}, events())
}

func TestSessionRejectedRefreshSignsOut(t *testing.T) {
	api := &fakeAuth{expiresIn: 3600}
	h := NewSessionHolder(api, &MemoryTokenStore{}, zap.NewNop())
	events := recordEvents(h)
	ctx := context.Background()

	require.NoError(t, h.SignInWithGoogle(ctx, "id-token"))
	api.refreshErr = apperr.Auth("fake.Refresh")

	require.ErrorIs(t, h.Refresh(ctx), apperr.ErrAuth)
	require.Zero(t, h.UserID())
	require.Equal(t, []Event{SignedIn, SignedOut}, events())

	require.ErrorIs(t, h.Refresh(ctx), apperr.ErrAuth)
}

func TestSessionUnsubscribe(t *testing.T) {
	h := NewSessionHolder(&fakeAuth{expiresIn: 60}, &MemoryTokenStore{}, zap.NewNop())
	calls := 0
	unsubscribe := h.Subscribe(func(Event) { calls++ })

	require.NoError(t, h.SignUp(context.Background(), "a@b.io", "password123"))
	unsubscribe()
	unsubscribe()
	require.NoError(t, h.SignOut(context.Background()))
	require.Equal(t, 1, calls)
}

func TestSessionStartRefreshesExpiredTokens(t *testing.T) {
	api := &fakeAuth{expiresIn: 3600}
	store := &MemoryTokenStore{}
	require.NoError(t, store.Save(&Tokens{
		UserID:       42,
		AccessToken:  "stale",
		RefreshToken: "refresh-old",
		ExpiresAt:    time.Now().Add(-time.Minute),
	}))

	h := NewSessionHolder(api, store, zap.NewNop())
	require.NoError(t, h.Start(context.Background()))
	defer h.Stop()

	require.Equal(t, 1, api.refreshCount())
	require.Equal(t, "access-refreshed", h.AccessToken())
	require.Equal(t, int64(42), h.UserID())
}

func TestSessionBackgroundRefresh(t *testing.T) {
	api := &fakeAuth{expiresIn: 1}
	h := NewSessionHolder(api, &MemoryTokenStore{}, zap.NewNop(), WithRefreshMargin(900*time.Millisecond))
	require.NoError(t, h.Start(context.Background()))

	require.NoError(t, h.SignIn(context.Background(), "a@b.io", "password123"))
	require.Eventually(t, func() bool { return api.refreshCount() >= 1 }, 3*time.Second, 20*time.Millisecond)

	h.Stop()
	h.Stop()
}

func TestSessionShortLivedTokensDoNotSpin(t *testing.T) {
	api := &fakeAuth{expiresIn: 30}
	h := NewSessionHolder(api, &MemoryTokenStore{}, zap.NewNop())
	require.NoError(t, h.Start(context.Background()))
	defer h.Stop()

	require.NoError(t, h.SignIn(context.Background(), "a@b.io", "password123"))
	time.Sleep(200 * time.Millisecond)
	require.Zero(t, api.refreshCount())
}

func TestSessionRefreshSchedule(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	ctx := context.Background()

	tests := []struct {
		name      string
		expiresIn int
		want      time.Duration
	}{
		{"long lived uses the margin", 3600, 59 * time.Minute},
		{"margin capped at half the lifetime", 30, 15 * time.Second},
		{"never sooner than the minimum interval", 0, minRefreshInterval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSessionHolder(&fakeAuth{expiresIn: tt.expiresIn}, &MemoryTokenStore{}, zap.NewNop(), WithClock(clock))
			require.NoError(t, h.SignIn(ctx, "a@b.io", "password123"))

			wait, ok := h.untilRefresh()
			require.True(t, ok)
			require.Equal(t, tt.want, wait)
		})
	}
}
