package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Tokens is the persisted sign-in state.
type Tokens struct {
	UserID       int64     `yaml:"user_id"`
	Email        string    `yaml:"email"`
	AccessToken  string    `yaml:"access_token"`
	RefreshToken string    `yaml:"refresh_token"`
	IssuedAt     time.Time `yaml:"issued_at,omitempty"`
	ExpiresAt    time.Time `yaml:"expires_at"`
}

// TokenStore persists Tokens between runs. Load returns nil, nil when
// nothing is stored.
type TokenStore interface {
	Load() (*Tokens, error)
	Save(t *Tokens) error
	Clear() error
}

// FileConfig is the CLI's config file.
type FileConfig struct {
	Server         string  `yaml:"server"`
	Session        *Tokens `yaml:"session,omitempty"`
	WrappedSession string  `yaml:"wrapped_session,omitempty"`
}

// FileTokenStore keeps the session inside the YAML config file, leaving the
// other settings as they are.
type FileTokenStore struct {
	path string
	mu   sync.Mutex
}

func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// DefaultConfigPath is ~/.config/datewrapped/config.yaml or the platform
// equivalent.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "datewrapped", "config.yaml"), nil
}

func (s *FileTokenStore) Path() string {
	return s.path
}

// ReadConfig returns the config file, or an empty config when it does not
// exist yet.
func (s *FileTokenStore) ReadConfig() (*FileConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// UpdateConfig applies fn to the config file and writes it back.
func (s *FileTokenStore) UpdateConfig(fn func(*FileConfig)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, err := s.read()
	if err != nil {
		return err
	}
	fn(cfg)
	return s.write(cfg)
}

func (s *FileTokenStore) Load() (*Tokens, error) {
	cfg, err := s.ReadConfig()
	if err != nil {
		return nil, err
	}
	return cfg.Session, nil
}

func (s *FileTokenStore) Save(t *Tokens) error {
	return s.UpdateConfig(func(cfg *FileConfig) { cfg.Session = t })
}

func (s *FileTokenStore) Clear() error {
	return s.UpdateConfig(func(cfg *FileConfig) { cfg.Session = nil })
}

func (s *FileTokenStore) read() (*FileConfig, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &FileConfig{}, nil
	}
	if err != nil {
		return nil, err
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return &cfg, nil
}

func (s *FileTokenStore) write(cfg *FileConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// MemoryTokenStore keeps tokens for the life of the process.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens *Tokens
}

func (m *MemoryTokenStore) Load() (*Tokens, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tokens == nil {
		return nil, nil
	}
	t := *m.tokens
	return &t, nil
}

func (m *MemoryTokenStore) Save(t *Tokens) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *t
	m.tokens = &c
	return nil
}

func (m *MemoryTokenStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = nil
	return nil
}
