package auth

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu       sync.Mutex
	users    map[int64]*User
	sessions map[int64]*Session
	nextID   int64
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{users: map[int64]*User{}, sessions: map[int64]*Session{}}
}

func (m *memoryRepository) CreateUser(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return ErrEmailAlreadyExists
		}
	}
	m.nextID++
	user.ID = m.nextID
	c := *user
	m.users[user.ID] = &c
	return nil
}

func (m *memoryRepository) GetUserByID(_ context.Context, id int64) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (m *memoryRepository) GetUserByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *memoryRepository) LinkProvider(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.users[user.ID]
	u.Provider = user.Provider
	u.ProviderID = user.ProviderID
	return nil
}

func (m *memoryRepository) CreateSession(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s.ID = m.nextID
	c := *s
	m.sessions[s.ID] = &c
	return nil
}

func (m *memoryRepository) GetSessionByToken(_ context.Context, token string) (*Session, error) {
	return m.findSession(func(s *Session) bool { return s.Token == token })
}

func (m *memoryRepository) GetSessionByRefreshToken(_ context.Context, token string) (*Session, error) {
	return m.findSession(func(s *Session) bool { return s.RefreshToken == token })
}

func (m *memoryRepository) findSession(match func(*Session) bool) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if match(s) {
			c := *s
			return &c, nil
		}
	}
	return nil, ErrSessionNotFound
}

func (m *memoryRepository) DeleteSession(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memoryRepository) DeleteSessionByToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.Token == token {
			delete(m.sessions, id)
		}
	}
	return nil
}

func (m *memoryRepository) DeleteExpiredSessions(context.Context) (int64, error) {
	return 0, nil
}

type fakeGoogle struct {
	identity *GoogleIdentity
	err      error
}

func (f fakeGoogle) Verify(context.Context, string) (*GoogleIdentity, error) {
	return f.identity, f.err
}
