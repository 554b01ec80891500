// Package session owns the single source of truth for "who is logged in".
// One Store exists per process; it is constructed at startup, injected into
// every consumer, and torn down with Close.
package session

import (
	"sync"

	"github.com/controle-pgm/controle/internal/api"
	"github.com/controle-pgm/controle/internal/authbus"
)

// Store holds the current identity and a loading flag. All mutations go
// through its methods; IsAuthenticated and IsAdmin are derived, never set.
//
// Writes carry a generation counter: an operation that went to the network
// only applies its result if no other write landed in between. A stale
// Refresh that resolves after a fresh Login therefore cannot overwrite the
// newer identity.
type Store struct {
	mu          sync.Mutex
	client      *api.Client
	identity    *Identity
	loading     bool
	gen         uint64
	unsubscribe func()
}

// New creates a Store bound to the API client and subscribes it to the
// session-invalidation signal on bus. The store starts in the loading state
// until Initialize resolves. bus may be nil in tests that exercise the store
// in isolation.
func New(client *api.Client, bus *authbus.Bus) *Store {
	s := &Store{
		client:  client,
		loading: true,
	}
	if bus != nil {
		s.unsubscribe = bus.Subscribe(s.clearIdentity)
	}
	return s
}

// Initialize probes the server for the current session. It never returns an
// error: the only observable outcomes are "identity present" and "identity
// absent", both with loading cleared.
func (s *Store) Initialize() {
	gen := s.snapshotGen()

	principal, err := s.client.Me()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if s.gen != gen {
		return
	}
	s.gen++
	if err != nil {
		s.identity = nil
		return
	}
	s.identity = identityFromPrincipal(principal)
}

// Login authenticates with the given credentials. On success the identity is
// replaced; on failure the error propagates unchanged and the identity is
// left as it was. Login never touches the loading flag.
func (s *Store) Login(email, password string) error {
	principal, err := s.client.Login(email, password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.identity = identityFromPrincipal(principal)
	return nil
}

// Logout invalidates the remote session and clears the identity. The local
// clear is guaranteed even when the remote call fails; the remote error is
// returned so callers can log it.
func (s *Store) Logout() error {
	err := s.client.Logout()

	s.mu.Lock()
	s.gen++
	s.identity = nil
	s.mu.Unlock()

	return err
}

// Refresh re-probes the server and reconciles the identity: success replaces
// it, failure clears it. Errors are swallowed; this is passive
// reconciliation, not a user action whose failure needs surfacing. A refresh
// that lost a race against a newer write is discarded.
func (s *Store) Refresh() {
	gen := s.snapshotGen()

	principal, err := s.client.Me()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	s.gen++
	if err != nil {
		s.identity = nil
		return
	}
	s.identity = identityFromPrincipal(principal)
}

// UpdateLocal merges the patch into the current identity without a network
// call. No-op when no identity is present. Used to reflect server-confirmed
// mutations, such as clearing the forced-password-change flag after a
// successful change.
func (s *Store) UpdateLocal(patch IdentityPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return
	}
	s.gen++
	if patch.Email != nil {
		s.identity.Email = *patch.Email
	}
	if patch.Name != nil {
		s.identity.Name = *patch.Name
	}
	if patch.Role != nil {
		s.identity.Role = *patch.Role
	}
	if patch.MustChangePassword != nil {
		s.identity.MustChangePassword = *patch.MustChangePassword
	}
}

// Identity returns a copy of the current identity and whether one is present.
func (s *Store) Identity() (Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

// IsLoading reports whether the initial session probe is still outstanding.
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// IsAuthenticated reports whether an identity is present.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity != nil
}

// IsAdmin reports whether the current identity carries the admin role.
func (s *Store) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity != nil && s.identity.Role == RoleAdmin
}

// MustChangePassword reports whether the current identity is blocked behind
// a forced password change.
func (s *Store) MustChangePassword() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity != nil && s.identity.MustChangePassword
}

// Close unregisters the store from the auth bus. The store remains readable
// afterwards but no longer reacts to invalidation signals.
func (s *Store) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

func (s *Store) snapshotGen() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *Store) clearIdentity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.identity = nil
}
