package client

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/imadgeboyega/datewrapped/internal/auth"
	"github.com/imadgeboyega/datewrapped/internal/common/apperr"
)

// Event is a change of the signed-in session.
type Event int

const (
	SignedIn Event = iota + 1
	TokenRefreshed
	SignedOut
)

func (e Event) String() string {
	switch e {
	case SignedIn:
		return "signed_in"
	case TokenRefreshed:
		return "token_refreshed"
	case SignedOut:
		return "signed_out"
	}
	return "unknown"
}

// Authenticator is the auth half of the API.
type Authenticator interface {
	SignUp(ctx context.Context, email, password string) (*auth.AuthResponse, error)
	SignIn(ctx context.Context, email, password string) (*auth.AuthResponse, error)
	SignInWithGoogle(ctx context.Context, idToken string) (*auth.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.AuthResponse, error)
	SignOut(ctx context.Context, accessToken string) error
}

const (
	defaultRefreshMargin = time.Minute
	refreshRetryDelay    = 30 * time.Second
	// minRefreshInterval bounds how often a freshly issued pair is
	// refreshed, whatever its lifetime.
	minRefreshInterval = time.Second
)

// SessionHolder owns the signed-in session of one client. It is created
// explicitly and passed to whatever needs the current user; Start and Stop
// bound the background token refresh.
type SessionHolder struct {
	api    Authenticator
	store  TokenStore
	logger *zap.Logger
	margin time.Duration
	now    func() time.Time

	mu      sync.RWMutex
	tokens  *Tokens
	retryAt time.Time
	subs    map[int]func(Event)
	nextSub int

	kick   chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

type SessionOption func(*SessionHolder)

// WithRefreshMargin sets how long before expiry the access token is
// refreshed.
func WithRefreshMargin(d time.Duration) SessionOption {
	return func(h *SessionHolder) { h.margin = d }
}

func WithClock(now func() time.Time) SessionOption {
	return func(h *SessionHolder) { h.now = now }
}

func NewSessionHolder(api Authenticator, store TokenStore, logger *zap.Logger, opts ...SessionOption) *SessionHolder {
	h := &SessionHolder{
		api:    api,
		store:  store,
		logger: logger.Named("session"),
		margin: defaultRefreshMargin,
		now:    time.Now,
		subs:   map[int]func(Event){},
		kick:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Start loads the stored session, refreshes it if it is about to expire and
// keeps it fresh until Stop is called or ctx ends.
func (h *SessionHolder) Start(ctx context.Context) error {
	t, err := h.store.Load()
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.tokens = t
	h.mu.Unlock()

	if t != nil && h.dueForRefresh() {
		if err := h.Refresh(ctx); err != nil && !errors.Is(err, apperr.ErrAuth) {
			h.logger.Warn("refresh stored session", zap.Error(err))
		}
	}

	loopCtx, cancel := context.WithCancel(ctx)
	h.mu.Lock()
	h.cancel = cancel
	h.done = make(chan struct{})
	done := h.done
	h.mu.Unlock()

	go h.loop(loopCtx, done)
	return nil
}

// Stop ends the refresh loop. Calling it without Start is a no-op.
func (h *SessionHolder) Stop() {
	h.mu.Lock()
	cancel, done := h.cancel, h.done
	h.cancel, h.done = nil, nil
	h.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (h *SessionHolder) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		var timer *time.Timer
		var fire <-chan time.Time
		if wait, ok := h.untilRefresh(); ok {
			timer = time.NewTimer(wait)
			fire = timer.C
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-h.kick:
			if timer != nil {
				timer.Stop()
			}
		case <-fire:
			if err := h.Refresh(ctx); err != nil && !errors.Is(err, apperr.ErrAuth) {
				h.logger.Warn("background refresh failed", zap.Error(err))
			}
		}
	}
}

// untilRefresh reports how long to sleep before the next refresh, and false
// when nobody is signed in.
func (h *SessionHolder) untilRefresh() (time.Duration, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.tokens == nil {
		return 0, false
	}
	at := h.refreshAt(h.tokens)
	if h.retryAt.After(at) {
		at = h.retryAt
	}
	wait := at.Sub(h.now())
	if wait < 0 {
		wait = 0
	}
	return wait, true
}

func (h *SessionHolder) dueForRefresh() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.tokens != nil && !h.now().Before(h.refreshAt(h.tokens))
}

// refreshAt is when t should be swapped. The margin is capped at half the
// token lifetime and a pair is never refreshed sooner than
// minRefreshInterval after it was issued. Tokens stored without an issue
// time fall back to the plain margin.
func (h *SessionHolder) refreshAt(t *Tokens) time.Time {
	if t.IssuedAt.IsZero() {
		return t.ExpiresAt.Add(-h.margin)
	}
	lifetime := t.ExpiresAt.Sub(t.IssuedAt)
	margin := min(h.margin, lifetime/2)
	return t.IssuedAt.Add(max(lifetime-margin, minRefreshInterval))
}

func (h *SessionHolder) SignUp(ctx context.Context, email, password string) error {
	resp, err := h.api.SignUp(ctx, email, password)
	if err != nil {
		return err
	}
	return h.setTokens(resp, SignedIn)
}

func (h *SessionHolder) SignIn(ctx context.Context, email, password string) error {
	resp, err := h.api.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	return h.setTokens(resp, SignedIn)
}

func (h *SessionHolder) SignInWithGoogle(ctx context.Context, idToken string) error {
	resp, err := h.api.SignInWithGoogle(ctx, idToken)
	if err != nil {
		return err
	}
	return h.setTokens(resp, SignedIn)
}

// Refresh swaps the token pair. A rejected refresh token signs the holder
// out.
func (h *SessionHolder) Refresh(ctx context.Context) error {
	h.mu.RLock()
	t := h.tokens
	h.mu.RUnlock()
	if t == nil {
		return apperr.Auth("session.Refresh")
	}

	resp, err := h.api.Refresh(ctx, t.RefreshToken)
	if errors.Is(err, apperr.ErrAuth) {
		h.logger.Info("refresh token rejected, signing out")
		if clearErr := h.clear(); clearErr != nil {
			h.logger.Warn("clear stored session", zap.Error(clearErr))
		}
		return err
	}
	if err != nil {
		h.mu.Lock()
		h.retryAt = h.now().Add(refreshRetryDelay)
		h.mu.Unlock()
		return err
	}
	return h.setTokens(resp, TokenRefreshed)
}

// SignOut revokes the session on the server when possible and always
// forgets it locally.
func (h *SessionHolder) SignOut(ctx context.Context) error {
	h.mu.RLock()
	t := h.tokens
	h.mu.RUnlock()
	if t == nil {
		return nil
	}
	if err := h.api.SignOut(ctx, t.AccessToken); err != nil {
		h.logger.Warn("server sign out failed", zap.Error(err))
	}
	return h.clear()
}

func (h *SessionHolder) UserID() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.tokens == nil {
		return 0
	}
	return h.tokens.UserID
}

func (h *SessionHolder) Email() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.tokens == nil {
		return ""
	}
	return h.tokens.Email
}

// AccessToken implements TokenSource.
func (h *SessionHolder) AccessToken() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.tokens == nil {
		return ""
	}
	return h.tokens.AccessToken
}

// Subscribe registers fn for session events and returns a function that
// removes it. Handlers run on the goroutine that caused the event.
func (h *SessionHolder) Subscribe(fn func(Event)) func() {
	h.mu.Lock()
	id := h.nextSub
	h.nextSub++
	h.subs[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

func (h *SessionHolder) setTokens(resp *auth.AuthResponse, ev Event) error {
	now := h.now()
	t := &Tokens{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		IssuedAt:     now,
		ExpiresAt:    now.Add(time.Duration(resp.ExpiresIn) * time.Second),
	}
	if resp.User != nil {
		t.UserID = resp.User.ID
		t.Email = resp.User.Email
	} else if cur := h.current(); cur != nil {
		t.UserID, t.Email = cur.UserID, cur.Email
	}

	h.mu.Lock()
	h.tokens = t
	h.retryAt = time.Time{}
	h.mu.Unlock()
	h.wake()

	err := h.store.Save(t)
	h.emit(ev)
	return err
}

func (h *SessionHolder) clear() error {
	h.mu.Lock()
	h.tokens = nil
	h.mu.Unlock()
	h.wake()

	err := h.store.Clear()
	h.emit(SignedOut)
	return err
}

func (h *SessionHolder) current() *Tokens {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.tokens
}

func (h *SessionHolder) wake() {
	select {
	case h.kick <- struct{}{}:
	default:
	}
}

func (h *SessionHolder) emit(ev Event) {
	h.mu.RLock()
	ids := make([]int, 0, len(h.subs))
	for id := range h.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, h.subs[id])
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}
