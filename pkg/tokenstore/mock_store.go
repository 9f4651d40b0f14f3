package tokenstore

import (
	"sort"
	"sync"
)

// MockStore is an in-memory Store with error injection, for tests.
type MockStore struct {
	tokens map[string]*StoredToken
	mu     sync.RWMutex

	SaveError   error
	LoadError   error
	ListError   error
	DeleteError error
}

func NewMockStore() *MockStore {
	return &MockStore{tokens: make(map[string]*StoredToken)}
}

// NewMockManager returns a manager backed by a single MockStore.
func NewMockManager() (*Manager, *MockStore) {
	store := NewMockStore()
	return NewManagerWithStores(nil, store), store
}

func (m *MockStore) Save(token *StoredToken) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	if token == nil || !validName(token.Name) {
		return ErrInvalidToken
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *token
	m.tokens[token.Name] = &cp
	return nil
}

func (m *MockStore) Load(name string) (*StoredToken, error) {
	if m.LoadError != nil {
		return nil, m.LoadError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tokens[name]
	if !ok {
		return nil, ErrTokenNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MockStore) List() ([]*StoredToken, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*StoredToken, 0, len(m.tokens))
	for _, t := range m.tokens {
		cp := *t
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *MockStore) Delete(name string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tokens[name]; !ok {
		return ErrTokenNotFound
	}
	delete(m.tokens, name)
	return nil
}

func (m *MockStore) Exists(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.tokens[name]
	return ok
}

// Count returns the number of stored tokens.
func (m *MockStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tokens)
}
