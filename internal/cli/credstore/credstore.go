// Package credstore persists the session cookie between CLI invocations in
// the OS keychain/credential manager. The cookie value is opaque credential
// material and never touches the filesystem.
package credstore

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const service = "controle-cli"

// ErrNotAuthenticated is returned when no session is stored for the
// environment.
var ErrNotAuthenticated = errors.New("not authenticated. Please run 'controle login' first")

// getKeyringKey returns a unique key for storing sessions per environment.
func getKeyringKey(envURL string) string {
	return fmt.Sprintf("session-%s", envURL)
}

// SaveSession persists the session cookie for an environment.
func SaveSession(envURL, cookie string) error {
	if err := keyring.Set(service, getKeyringKey(envURL), cookie); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// LoadSession retrieves the session cookie for an environment.
func LoadSession(envURL string) (string, error) {
	cookie, err := keyring.Get(service, getKeyringKey(envURL))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotAuthenticated
		}
		return "", fmt.Errorf("failed to load session: %w", err)
	}
	return cookie, nil
}

// DeleteSession removes the stored session cookie for an environment.
func DeleteSession(envURL string) error {
	if err := keyring.Delete(service, getKeyringKey(envURL)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // already deleted
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
