package secrets

import "sync"

// MockStore is an in-memory Store.
type MockStore struct {
	mu   sync.Mutex
	data map[string]string

	GetErr error
	SetErr error
}

// NewMockStore creates an empty MockStore
func NewMockStore() *MockStore {
	return &MockStore{data: make(map[string]string)}
}

func (m *MockStore) Get(service, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return "", m.GetErr
	}
	v, ok := m.data[service+":"+key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MockStore) Set(service, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.data[service+":"+key] = value
	return nil
}

func (m *MockStore) Delete(service, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, service+":"+key)
	return nil
}
