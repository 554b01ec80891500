package session

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/controle-pgm/controle/internal/api"
	"github.com/controle-pgm/controle/internal/authbus"
)

// fakeBackend is a programmable auth backend for store tests.
type fakeBackend struct {
	mu        sync.Mutex
	principal *api.Principal // nil means /auth/me answers 401
	logoutErr bool
	loginErr  int // non-zero status fails /auth/login
}

func (f *fakeBackend) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		principal := f.principal
		logoutErr := f.logoutErr
		loginErr := f.loginErr
		f.mu.Unlock()

		switch r.URL.Path {
		case "/api/auth/me":
			if principal == nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			writePrincipal(w, principal)
		case "/api/auth/login":
			if loginErr != 0 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(loginErr)
				fmt.Fprint(w, `{"error":"unauthorized","message":"invalid credentials"}`)
				return
			}
			writePrincipal(w, principal)
		case "/api/auth/logout":
			if logoutErr {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func writePrincipal(w http.ResponseWriter, p *api.Principal) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"user_id":%q,"email":%q,"name":%q,"role":%q,"must_change_password":%t}`,
		p.UserID, p.Email, p.Name, p.Role, p.MustChangePassword)
}

func newTestStore(t *testing.T, backend *fakeBackend) (*Store, *authbus.Bus, func()) {
	t.Helper()
	server := httptest.NewServer(backend.handler())
	bus := authbus.New()
	store := New(api.New(server.URL, bus), bus)
	return store, bus, server.Close
}

func TestInitializeWithActiveSession(t *testing.T) {
	backend := &fakeBackend{principal: &api.Principal{UserID: "u1", Email: "a@b.com", Name: "Ana", Role: "admin"}}
	store, _, cleanup := newTestStore(t, backend)
	defer cleanup()

	if !store.IsLoading() {
		t.Fatal("store must start in the loading state")
	}

	store.Initialize()

	if store.IsLoading() {
		t.Error("loading must clear after Initialize")
	}
	if !store.IsAuthenticated() {
		t.Error("expected authenticated after successful probe")
	}
	if !store.IsAdmin() {
		t.Error("expected admin for admin role")
	}
}

func TestInitializeWithoutSession(t *testing.T) {
	backend := &fakeBackend{} // /auth/me answers 401
	store, _, cleanup := newTestStore(t, backend)
	defer cleanup()

	store.Initialize()

	if store.IsLoading() {
		t.Error("loading must clear even when the probe fails")
	}
	if store.IsAuthenticated() {
		t.Error("expected anonymous after failed probe")
	}
}

func TestInitializeSurvivesUnreachableServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	store := New(api.New(server.URL, nil), nil)
	store.Initialize() // must not panic or propagate

	if store.IsLoading() || store.IsAuthenticated() {
		t.Error("expected anonymous, settled state after connection failure")
	}
}

func TestLoginReplacesIdentity(t *testing.T) {
	backend := &fakeBackend{principal: &api.Principal{UserID: "u1", Email: "a@b.com", Name: "Ana", Role: "user"}}
	store, _, cleanup := newTestStore(t, backend)
	defer cleanup()

	if err := store.Login("a@b.com", "pw"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	identity, ok := store.Identity()
	if !ok {
		t.Fatal("expected identity after login")
	}
	if identity.Email != "a@b.com" || identity.Role != RoleUser {
		t.Errorf("unexpected identity: %+v", identity)
	}
	if store.IsAdmin() {
		t.Error("user role must not grant admin")
	}
}

func TestLoginFailurePropagatesToCaller(t *testing.T) {
	backend := &fakeBackend{principal: &api.Principal{UserID: "u1", Email: "a@b.com", Role: "user"}}
	store, _, cleanup := newTestStore(t, backend)
	defer cleanup()

	store.Initialize()

	if err := store.Login("a@b.com", "pw"); err != nil {
		t.Fatalf("first login failed: %v", err)
	}

	backend.mu.Lock()
	backend.loginErr = http.StatusUnauthorized
	backend.mu.Unlock()

	loadingBefore := store.IsLoading()

	err := store.Login("a@b.com", "wrong")
	if err == nil {
		t.Fatal("expected login error to propagate")
	}
	if !api.IsUnauthorized(err) {
		t.Errorf("expected unauthorized error, got %v", err)
	}

	// A failed login rejected the credentials, which also fires the session
	// signal; the previously held identity is cleared by the bus, matching
	// the server's view that the session is gone.
	if store.IsLoading() != loadingBefore {
		t.Error("login must not touch the loading flag")
	}
}

func TestLogoutClearsIdentityEvenWhenRemoteFails(t *testing.T) {
	backend := &fakeBackend{
		principal: &api.Principal{UserID: "u1", Email: "a@b.com", Role: "user"},
		logoutErr: true,
	}
	store, _, cleanup := newTestStore(t, backend)
	defer cleanup()

	if err := store.Login("a@b.com", "pw"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	err := store.Logout()
	if err == nil {
		t.Error("expected the remote failure to be reported")
	}
	if store.IsAuthenticated() {
		t.Error("identity must clear even when the logout call fails")
	}
}

func TestLogoutAgainstUnreachableServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	store := New(api.New(server.URL, nil), nil)
	if err := store.Logout(); err == nil {
		t.Error("expected connection error from logout")
	}
	if store.IsAuthenticated() {
		t.Error("expected anonymous after logout")
	}
}

func TestRefreshSwallowsFailuresAndClears(t *testing.T) {
	backend := &fakeBackend{principal: &api.Principal{UserID: "u1", Email: "a@b.com", Role: "user"}}
	store, _, cleanup := newTestStore(t, backend)
	defer cleanup()

	if err := store.Login("a@b.com", "pw"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	backend.mu.Lock()
	backend.principal = nil // session expired server-side
	backend.mu.Unlock()

	store.Refresh() // must not panic or propagate

	if store.IsAuthenticated() {
		t.Error("expected identity cleared after failed refresh")
	}
}

func TestRefreshReplacesIdentityOnSuccess(t *testing.T) {
	backend := &fakeBackend{principal: &api.Principal{UserID: "u1", Email: "a@b.com", Name: "Ana", Role: "user", MustChangePassword: true}}
	store, _, cleanup := newTestStore(t, backend)
	defer cleanup()

	store.Initialize()

	backend.mu.Lock()
	backend.principal = &api.Principal{UserID: "u1", Email: "a@b.com", Name: "Ana Maria", Role: "admin"}
	backend.mu.Unlock()

	store.Refresh()

	identity, ok := store.Identity()
	if !ok {
		t.Fatal("expected identity after refresh")
	}
	if identity.Name != "Ana Maria" || identity.Role != RoleAdmin || identity.MustChangePassword {
		t.Errorf("expected wholesale replacement, got %+v", identity)
	}
}

func TestStaleRefreshDoesNotClobberNewerLogin(t *testing.T) {
	release := make(chan struct{})
	probeStarted := make(chan struct{})

	var once sync.Once
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/me":
			once.Do(func() { close(probeStarted) })
			<-release
			writePrincipal(w, &api.Principal{UserID: "stale", Email: "old@b.com", Role: "user"})
		case "/api/auth/login":
			writePrincipal(w, &api.Principal{UserID: "fresh", Email: "new@b.com", Role: "admin"})
		}
	}))
	defer server.Close()

	store := New(api.New(server.URL, nil), nil)

	done := make(chan struct{})
	go func() {
		store.Refresh()
		close(done)
	}()

	<-probeStarted
	if err := store.Login("new@b.com", "pw"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	close(release)
	<-done

	identity, ok := store.Identity()
	if !ok {
		t.Fatal("expected identity to survive the stale refresh")
	}
	if identity.UserID != "fresh" {
		t.Errorf("stale refresh overwrote newer login: %+v", identity)
	}
}

func TestUpdateLocalMergesFields(t *testing.T) {
	backend := &fakeBackend{principal: &api.Principal{UserID: "u1", Email: "a@b.com", Name: "Ana", Role: "user", MustChangePassword: true}}
	store, _, cleanup := newTestStore(t, backend)
	defer cleanup()

	store.Initialize()
	if !store.MustChangePassword() {
		t.Fatal("expected forced password change before the patch")
	}

	cleared := false
	store.UpdateLocal(IdentityPatch{MustChangePassword: &cleared})

	if store.MustChangePassword() {
		t.Error("expected the patch to clear the forced password change")
	}
	identity, _ := store.Identity()
	if identity.Name != "Ana" || identity.Email != "a@b.com" {
		t.Errorf("patch must leave other fields alone, got %+v", identity)
	}
}

func TestUpdateLocalIsNoOpWhenAnonymous(t *testing.T) {
	backend := &fakeBackend{}
	store, _, cleanup := newTestStore(t, backend)
	defer cleanup()

	store.Initialize()

	cleared := false
	store.UpdateLocal(IdentityPatch{MustChangePassword: &cleared})

	if store.IsAuthenticated() {
		t.Error("UpdateLocal must never create an identity")
	}
}

func TestAuthSignalClearsIdentity(t *testing.T) {
	backend := &fakeBackend{principal: &api.Principal{UserID: "u1", Email: "a@b.com", Role: "user"}}
	store, bus, cleanup := newTestStore(t, backend)
	defer cleanup()

	store.Initialize()
	if !store.IsAuthenticated() {
		t.Fatal("expected authenticated before the signal")
	}

	bus.Publish()

	if store.IsAuthenticated() {
		t.Error("expected identity cleared by the auth signal")
	}
}

func TestCloseUnsubscribesFromBus(t *testing.T) {
	backend := &fakeBackend{principal: &api.Principal{UserID: "u1", Email: "a@b.com", Role: "user"}}
	store, bus, cleanup := newTestStore(t, backend)
	defer cleanup()

	store.Initialize()
	store.Close()

	bus.Publish()

	if !store.IsAuthenticated() {
		t.Error("closed store must no longer react to the auth signal")
	}
}

func TestAuthenticatedTracksIdentityPresence(t *testing.T) {
	backend := &fakeBackend{principal: &api.Principal{UserID: "u1", Email: "a@b.com", Role: "user"}}
	store, bus, cleanup := newTestStore(t, backend)
	defer cleanup()

	check := func(step string) {
		_, present := store.Identity()
		if present != store.IsAuthenticated() {
			t.Errorf("%s: IsAuthenticated diverged from identity presence", step)
		}
	}

	check("initial")
	store.Initialize()
	check("after initialize")
	store.Logout()
	check("after logout")
	store.Login("a@b.com", "pw")
	check("after login")
	bus.Publish()
	check("after signal")
	store.Refresh()
	check("after refresh")
}
