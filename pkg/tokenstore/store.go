package tokenstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"graphkit/pkg/graph"
	"graphkit/pkg/logger"
)

// StoredToken is an access token saved under a name for later use.
type StoredToken struct {
	Name         string    `json:"name" db:"name"`
	Variant      string    `json:"variant" db:"variant"`
	AppID        string    `json:"app_id,omitempty" db:"app_id"`
	AccessToken  string    `json:"access_token" db:"access_token"`
	TokenType    string    `json:"token_type,omitempty" db:"token_type"`
	Expires      time.Time `json:"expires,omitempty" db:"expires"`
	LastModified time.Time `json:"last_modified" db:"last_modified"`
}

// FromAccessToken builds a StoredToken for tok.
func FromAccessToken(name, variant, appID string, tok *graph.AccessToken) *StoredToken {
	return &StoredToken{
		Name:        name,
		Variant:     variant,
		AppID:       appID,
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		Expires:     tok.Expires,
	}
}

// AccessTokenValue converts back to the client representation.
func (t *StoredToken) AccessTokenValue() *graph.AccessToken {
	tok := &graph.AccessToken{
		AccessToken: t.AccessToken,
		TokenType:   t.TokenType,
		Expires:     t.Expires,
	}
	if !t.Expires.IsZero() && !t.LastModified.IsZero() {
		tok.ExpiresIn = int64(t.Expires.Sub(t.LastModified) / time.Second)
	}
	return tok
}

// Expired reports whether the token has a known expiry that has passed.
func (t *StoredToken) Expired(now time.Time) bool {
	return !t.Expires.IsZero() && !now.Before(t.Expires)
}

// Store persists named tokens.
type Store interface {
	Save(token *StoredToken) error
	Load(name string) (*StoredToken, error)
	List() ([]*StoredToken, error)
	Delete(name string) error
	Exists(name string) bool
}

var (
	ErrTokenNotFound    = errors.New("token not found")
	ErrInvalidToken     = errors.New("invalid token")
	ErrStoreUnavailable = errors.New("token store unavailable")
)

// Manager writes to the first store that accepts a token and reads from
// the first store that has it.
type Manager struct {
	stores []Store
	logger logger.Logger
}

// NewManagerWithStores creates a manager over stores, in fallback order.
func NewManagerWithStores(log logger.Logger, stores ...Store) *Manager {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Manager{stores: stores, logger: log}
}

// NewManager builds the stores for backend. "auto" tries the keyring, then
// the encrypted file, then the environment.
func NewManager(backend, path string, log logger.Logger) (*Manager, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	switch backend {
	case "keyring":
		ks, err := NewKeyringStore()
		if err != nil {
			return nil, err
		}
		return NewManagerWithStores(log, ks, NewEnvironmentStore()), nil
	case "file":
		fs, err := newDefaultFileStore(path)
		if err != nil {
			return nil, err
		}
		return NewManagerWithStores(log, fs, NewEnvironmentStore()), nil
	case "sqlite":
		if path == "" {
			dir, err := ConfigDir()
			if err != nil {
				return nil, err
			}
			path = filepath.Join(dir, "tokens.db")
		}
		ss, err := NewSQLiteStore(path)
		if err != nil {
			return nil, err
		}
		return NewManagerWithStores(log, ss, NewEnvironmentStore()), nil
	case "env":
		return NewManagerWithStores(log, NewEnvironmentStore()), nil
	case "auto", "":
		var stores []Store
		if ks, err := NewKeyringStore(); err == nil {
			stores = append(stores, ks)
		} else {
			log.WithError(err).Debug("keyring unavailable, falling back to encrypted file")
		}
		fs, err := newDefaultFileStore(path)
		if err != nil {
			return nil, err
		}
		stores = append(stores, fs, NewEnvironmentStore())
		return NewManagerWithStores(log, stores...), nil
	default:
		return nil, fmt.Errorf("unknown token store backend %q", backend)
	}
}

func newDefaultFileStore(path string) (*EncryptedFileStore, error) {
	if path == "" {
		dir, err := ConfigDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "tokens.enc")
	}
	return NewEncryptedFileStore(path)
}

// Save stamps LastModified and writes token to the first store that accepts it.
func (m *Manager) Save(token *StoredToken) error {
	if token == nil || token.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidToken)
	}
	if token.AccessToken == "" {
		return fmt.Errorf("%w: access token is required", ErrInvalidToken)
	}
	token.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		err := store.Save(token)
		if err == nil {
			m.logger.DebugWithFields("token saved", map[string]interface{}{
				"name":  token.Name,
				"store": fmt.Sprintf("%T", store),
			})
			return nil
		}
		lastErr = err
	}
	if lastErr != nil {
		return fmt.Errorf("failed to save token: %w", lastErr)
	}
	return ErrStoreUnavailable
}

// Load returns the token from the first store that has it.
func (m *Manager) Load(name string) (*StoredToken, error) {
	var lastErr error
	for _, store := range m.stores {
		token, err := store.Load(name)
		switch {
		case err == nil && token != nil:
			return token, nil
		case err == nil, errors.Is(err, ErrTokenNotFound), errors.Is(err, ErrStoreUnavailable):
		default:
			lastErr = err
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("failed to load token: %w", lastErr)
	}
	return nil, fmt.Errorf("%w: %s", ErrTokenNotFound, name)
}

// List merges every store, keeping the most recently modified copy of each
// name, sorted by name.
func (m *Manager) List() ([]*StoredToken, error) {
	byName := make(map[string]*StoredToken)
	for _, store := range m.stores {
		tokens, err := store.List()
		if err != nil {
			m.logger.WithError(err).Warn("skipping token store that failed to list")
			continue
		}
		for _, t := range tokens {
			if existing, ok := byName[t.Name]; !ok || t.LastModified.After(existing.LastModified) {
				byName[t.Name] = t
			}
		}
	}

	result := make([]*StoredToken, 0, len(byName))
	for _, t := range byName {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// Delete removes name from every store that has it.
func (m *Manager) Delete(name string) error {
	var deleted bool
	var lastErr error
	for _, store := range m.stores {
		err := store.Delete(name)
		switch {
		case err == nil:
			deleted = true
		case errors.Is(err, ErrTokenNotFound), errors.Is(err, ErrStoreUnavailable):
		default:
			lastErr = err
		}
	}
	if deleted {
		return nil
	}
	if lastErr != nil {
		return fmt.Errorf("failed to delete token: %w", lastErr)
	}
	return fmt.Errorf("%w: %s", ErrTokenNotFound, name)
}

// Sanitize returns a copy of t with the access token masked.
func Sanitize(t *StoredToken) *StoredToken {
	if t == nil {
		return nil
	}
	cp := *t
	cp.AccessToken = logger.MaskSecret(t.AccessToken)
	return &cp
}

// ConfigDir returns the per-user graphkit directory, creating it if needed.
func ConfigDir() (string, error) {
	var dir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, "Library", "Application Support", "graphkit")
	case "windows":
		dir = filepath.Join(os.Getenv("APPDATA"), "graphkit")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			dir = filepath.Join(xdg, "graphkit")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			dir = filepath.Join(home, ".config", "graphkit")
		}
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

func validName(name string) bool {
	return strings.TrimSpace(name) != ""
}
