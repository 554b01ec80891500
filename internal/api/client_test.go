package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/controle-pgm/controle/internal/authbus"
)

func TestUnauthorizedPublishesSignalExactlyOnce(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	bus := authbus.New()
	fired := 0
	bus.Subscribe(func() { fired++ })

	client := New(server.URL, bus)
	_, err := client.Me()

	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !IsUnauthorized(err) {
		t.Errorf("expected IsUnauthorized(err) to be true, got %v", err)
	}
	if fired != 1 {
		t.Errorf("auth signal fired %d times, expected exactly 1", fired)
	}
}

func TestNilBusSkipsSignal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := New(server.URL, nil)
	if _, err := client.Me(); !IsUnauthorized(err) {
		t.Errorf("expected unauthorized error, got %v", err)
	}
}

func TestRequestErrorCarriesParsedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"conflict","message":"code already exists"}`))
	}))
	defer server.Close()

	client := New(server.URL, nil)
	err := client.Post("/document-types", map[string]string{"code": "OF"}, nil)

	reqErr, ok := err.(*RequestError)
	if !ok {
		t.Fatalf("expected *RequestError, got %T: %v", err, err)
	}
	if reqErr.Status != http.StatusConflict {
		t.Errorf("expected status 409, got %d", reqErr.Status)
	}
	if reqErr.Body == nil || reqErr.Body.Message != "code already exists" {
		t.Errorf("expected parsed error body, got %+v", reqErr.Body)
	}
	if got := reqErr.Message("fallback"); got != "code already exists" {
		t.Errorf("expected server message, got %q", got)
	}
}

func TestRequestErrorWithoutParseableBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html>oops</html>"))
	}))
	defer server.Close()

	client := New(server.URL, nil)
	err := client.Get("/users", nil)

	reqErr, ok := err.(*RequestError)
	if !ok {
		t.Fatalf("expected *RequestError, got %T", err)
	}
	if reqErr.Body != nil {
		t.Errorf("expected nil body for non-JSON response, got %+v", reqErr.Body)
	}
	if got := reqErr.Message("fallback"); got != "fallback" {
		t.Errorf("expected fallback message, got %q", got)
	}
}

func TestNoContentResponseSkipsDecoding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := New(server.URL, nil)
	var out struct{ Field string }
	if err := client.Post("/auth/logout", nil, &out); err != nil {
		t.Fatalf("expected 204 to resolve without error, got %v", err)
	}
	if out.Field != "" {
		t.Errorf("expected out to be untouched, got %+v", out)
	}
}

func TestConnectionFailureIsDistinctFromRequestFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse all connections

	client := New(server.URL, nil)
	_, err := client.Me()

	if err == nil {
		t.Fatal("expected error when server is unreachable")
	}
	if !IsConnectionError(err) {
		t.Errorf("expected connection error, got %T: %v", err, err)
	}
	if IsUnauthorized(err) {
		t.Error("connection failure must not be classified as unauthorized")
	}
}

func TestSessionCookieIsCarriedAcrossCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			http.SetCookie(w, &http.Cookie{Name: "controle_session", Value: "abc123", HttpOnly: true})
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"user_id":"u1","email":"a@b.com","name":"A","role":"user","must_change_password":false}`))
		case "/api/auth/me":
			cookie, err := r.Cookie("controle_session")
			if err != nil || cookie.Value != "abc123" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"user_id":"u1","email":"a@b.com","name":"A","role":"user","must_change_password":false}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := New(server.URL, nil)
	if _, err := client.Login("a@b.com", "pw"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	principal, err := client.Me()
	if err != nil {
		t.Fatalf("expected cookie to authenticate the probe, got %v", err)
	}
	if principal.Email != "a@b.com" {
		t.Errorf("unexpected principal: %+v", principal)
	}
}

func TestHistoryQueryEncoding(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[],"total":0,"page":1,"page_size":20,"total_pages":0}`))
	}))
	defer server.Close()

	client := New(server.URL, nil)
	_, err := client.History(HistoryFilter{DocumentTypeCode: "OF", Year: 2026, Action: "generated", Page: 2})
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}

	want := "action=generated&document_type_code=OF&page=2&year=2026"
	if gotQuery != want {
		t.Errorf("expected query %q, got %q", want, gotQuery)
	}
}
