package credstore

// Store defines the interface for session persistence operations.
// This allows us to mock the keyring in tests.
type Store interface {
	SaveSession(envURL, cookie string) error
	LoadSession(envURL string) (string, error)
	DeleteSession(envURL string) error
}

// defaultStore implements Store using the OS keyring.
type defaultStore struct{}

// Default is the keyring-backed store used outside of tests.
var Default Store = &defaultStore{}

func (d *defaultStore) SaveSession(envURL, cookie string) error {
	return SaveSession(envURL, cookie)
}

func (d *defaultStore) LoadSession(envURL string) (string, error) {
	return LoadSession(envURL)
}

func (d *defaultStore) DeleteSession(envURL string) error {
	return DeleteSession(envURL)
}

// Memory is an in-memory Store for tests.
type Memory struct {
	sessions map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{sessions: make(map[string]string)}
}

func (m *Memory) SaveSession(envURL, cookie string) error {
	m.sessions[envURL] = cookie
	return nil
}

func (m *Memory) LoadSession(envURL string) (string, error) {
	cookie, ok := m.sessions[envURL]
	if !ok {
		return "", ErrNotAuthenticated
	}
	return cookie, nil
}

func (m *Memory) DeleteSession(envURL string) error {
	delete(m.sessions, envURL)
	return nil
}
