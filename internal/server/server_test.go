package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/controle-pgm/controle/internal/auth"
	"github.com/controle-pgm/controle/internal/config"
	"github.com/controle-pgm/controle/internal/models"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{
		Database:   filepath.Join(t.TempDir(), "controle-test.sqlite"),
		CORSOrigin: "http://localhost:5173",
		Seed:       false,
	}
	srv, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	return srv
}

func createUser(t *testing.T, srv *Server, email, password, role string, active, mustChange bool) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	user := &models.User{
		Email:              email,
		Name:               "Test " + email,
		PasswordHash:       hash,
		Role:               role,
		IsActive:           active,
		MustChangePassword: mustChange,
	}
	require.NoError(t, srv.db.Create(user).Error)
	return user
}

func doJSON(srv *Server, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	return w
}

func loginCookies(t *testing.T, srv *Server, email, password string) []*http.Cookie {
	t.Helper()

	w := doJSON(srv, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, "login response: %s", w.Body.String())
	return w.Result().Cookies()
}

func TestLoginIssuesSessionCookie(t *testing.T) {
	srv := newTestServer(t)
	createUser(t, srv, "ana@pgm.gov.br", "secret123", models.RoleAdmin, true, false)

	w := doJSON(srv, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "ana@pgm.gov.br",
		"password": "secret123",
	}, nil)

	require.Equal(t, http.StatusOK, w.Code)

	var principal PrincipalResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &principal))
	assert.Equal(t, "ana@pgm.gov.br", principal.Email)
	assert.Equal(t, models.RoleAdmin, principal.Role)
	assert.False(t, principal.MustChangePassword)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv := newTestServer(t)
	createUser(t, srv, "ana@pgm.gov.br", "secret123", models.RoleUser, true, false)

	w := doJSON(srv, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "ana@pgm.gov.br",
		"password": "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(srv, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "nobody@pgm.gov.br",
		"password": "secret123",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	srv := newTestServer(t)
	createUser(t, srv, "off@pgm.gov.br", "secret123", models.RoleUser, false, false)

	w := doJSON(srv, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "off@pgm.gov.br",
		"password": "secret123",
	}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMeRequiresSession(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(srv, http.MethodGet, "/api/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMeReturnsPrincipalFromCookie(t *testing.T) {
	srv := newTestServer(t)
	createUser(t, srv, "ana@pgm.gov.br", "secret123", models.RoleUser, true, true)
	cookies := loginCookies(t, srv, "ana@pgm.gov.br", "secret123")

	w := doJSON(srv, http.MethodGet, "/api/auth/me", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var principal PrincipalResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &principal))
	assert.Equal(t, "ana@pgm.gov.br", principal.Email)
	assert.True(t, principal.MustChangePassword)
}

func TestLogoutClearsCookieWithNoContent(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(srv, http.MethodPost, "/api/auth/logout", nil, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.True(t, cookies[0].MaxAge < 0)
}

func TestChangePasswordRejectsWrongCurrentPassword(t *testing.T) {
	srv := newTestServer(t)
	createUser(t, srv, "ana@pgm.gov.br", "secret123", models.RoleUser, true, true)
	cookies := loginCookies(t, srv, "ana@pgm.gov.br", "secret123")

	w := doJSON(srv, http.MethodPost, "/api/auth/change-password", map[string]string{
		"current_password": "wrong",
		"new_password":     "brandnew1",
	}, cookies)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChangePasswordEnforcesPolicy(t *testing.T) {
	srv := newTestServer(t)
	createUser(t, srv, "ana@pgm.gov.br", "secret123", models.RoleUser, true, true)
	cookies := loginCookies(t, srv, "ana@pgm.gov.br", "secret123")

	for _, weak := range []string{"short1", "onlyletters", "12345678"} {
		w := doJSON(srv, http.MethodPost, "/api/auth/change-password", map[string]string{
			"current_password": "secret123",
			"new_password":     weak,
		}, cookies)
		assert.Equalf(t, http.StatusBadRequest, w.Code, "password %q must violate the policy", weak)
	}
}

func TestChangePasswordClearsForcedFlagAndReissuesCookie(t *testing.T) {
	srv := newTestServer(t)
	createUser(t, srv, "ana@pgm.gov.br", "secret123", models.RoleUser, true, true)
	cookies := loginCookies(t, srv, "ana@pgm.gov.br", "secret123")

	w := doJSON(srv, http.MethodPost, "/api/auth/change-password", map[string]string{
		"current_password": "secret123",
		"new_password":     "brandnew1",
	}, cookies)
	require.Equal(t, http.StatusNoContent, w.Code)

	reissued := w.Result().Cookies()
	require.Len(t, reissued, 1)

	w = doJSON(srv, http.MethodGet, "/api/auth/me", nil, reissued)
	require.Equal(t, http.StatusOK, w.Code)

	var principal PrincipalResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &principal))
	assert.False(t, principal.MustChangePassword, "forced flag must clear after the change")

	// The old password no longer works, the new one does.
	w = doJSON(srv, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "ana@pgm.gov.br", "password": "secret123",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	loginCookies(t, srv, "ana@pgm.gov.br", "brandnew1")
}

func TestAdminRoutesRejectRegularUsers(t *testing.T) {
	srv := newTestServer(t)
	createUser(t, srv, "user@pgm.gov.br", "secret123", models.RoleUser, true, false)
	cookies := loginCookies(t, srv, "user@pgm.gov.br", "secret123")

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/users"},
		{http.MethodGet, "/api/document-types"},
		{http.MethodPost, "/api/numbers/correct"},
	} {
		w := doJSON(srv, route.method, route.path, nil, cookies)
		assert.Equalf(t, http.StatusForbidden, w.Code, "%s %s must be admin only", route.method, route.path)
	}
}

func TestNumberGenerationIsSequentialPerTypeAndYear(t *testing.T) {
	srv := newTestServer(t)
	createUser(t, srv, "admin@pgm.gov.br", "secret123", models.RoleAdmin, true, false)
	cookies := loginCookies(t, srv, "admin@pgm.gov.br", "secret123")

	w := doJSON(srv, http.MethodPost, "/api/document-types", map[string]string{
		"code": "OF", "name": "Oficio",
	}, cookies)
	require.Equal(t, http.StatusCreated, w.Code)

	for want := 1; want <= 3; want++ {
		w = doJSON(srv, http.MethodPost, "/api/numbers/generate", map[string]any{
			"document_type_code": "OF", "year": 2026,
		}, cookies)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Number    int    `json:"number"`
			Formatted string `json:"formatted"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, want, resp.Number)
		assert.Equal(t, fmt.Sprintf("OF %04d/2026", want), resp.Formatted)
	}

	// Another year starts its own counter.
	w = doJSON(srv, http.MethodPost, "/api/numbers/generate", map[string]any{
		"document_type_code": "OF", "year": 2027,
	}, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Number int `json:"number"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Number)
}

func TestCurrentNumberKeepsOneResponseShape(t *testing.T) {
	srv := newTestServer(t)
	createUser(t, srv, "admin@pgm.gov.br", "secret123", models.RoleAdmin, true, false)
	cookies := loginCookies(t, srv, "admin@pgm.gov.br", "secret123")

	doJSON(srv, http.MethodPost, "/api/document-types", map[string]string{"code": "OF", "name": "Oficio"}, cookies)

	wantKeys := map[string]bool{"document_type_code": true, "year": true, "current_number": true}

	// Before any allocation the counter reads zero.
	w := doJSON(srv, http.MethodGet, "/api/numbers/current?document_type_code=OF&year=2026", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var empty map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &empty))
	for key := range empty {
		assert.True(t, wantKeys[key], "unexpected key %q in zero-counter response", key)
	}
	assert.Equal(t, float64(0), empty["current_number"])

	doJSON(srv, http.MethodPost, "/api/numbers/generate", map[string]any{"document_type_code": "OF", "year": 2026}, cookies)

	// After an allocation the body carries the same keys, no model internals.
	w = doJSON(srv, http.MethodGet, "/api/numbers/current?document_type_code=OF&year=2026", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var found map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &found))
	for key := range found {
		assert.True(t, wantKeys[key], "unexpected key %q in counter response", key)
	}
	assert.Equal(t, float64(1), found["current_number"])
	assert.Equal(t, "OF", found["document_type_code"])
}

func TestCorrectionRecordsPreviousNumber(t *testing.T) {
	srv := newTestServer(t)
	createUser(t, srv, "admin@pgm.gov.br", "secret123", models.RoleAdmin, true, false)
	cookies := loginCookies(t, srv, "admin@pgm.gov.br", "secret123")

	doJSON(srv, http.MethodPost, "/api/document-types", map[string]string{"code": "OF", "name": "Oficio"}, cookies)
	doJSON(srv, http.MethodPost, "/api/numbers/generate", map[string]any{"document_type_code": "OF", "year": 2026}, cookies)

	w := doJSON(srv, http.MethodPost, "/api/numbers/correct", map[string]any{
		"document_type_code": "OF",
		"year":               2026,
		"new_number":         41,
		"notes":              "aligning with the paper ledger",
	}, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		PreviousNumber int `json:"previous_number"`
		NewNumber      int `json:"new_number"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.PreviousNumber)
	assert.Equal(t, 41, resp.NewNumber)

	// History shows the correction first (newest first) with both values.
	w = doJSON(srv, http.MethodGet, "/api/history?action=corrected", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Items []models.NumberLog `json:"items"`
		Total int                `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Equal(t, 1, page.Total)
	require.NotNil(t, page.Items[0].PreviousNumber)
	assert.Equal(t, 1, *page.Items[0].PreviousNumber)
}

func TestHistoryPagination(t *testing.T) {
	srv := newTestServer(t)
	createUser(t, srv, "admin@pgm.gov.br", "secret123", models.RoleAdmin, true, false)
	cookies := loginCookies(t, srv, "admin@pgm.gov.br", "secret123")

	doJSON(srv, http.MethodPost, "/api/document-types", map[string]string{"code": "OF", "name": "Oficio"}, cookies)
	for i := 0; i < 5; i++ {
		doJSON(srv, http.MethodPost, "/api/numbers/generate", map[string]any{"document_type_code": "OF", "year": 2026}, cookies)
	}

	w := doJSON(srv, http.MethodGet, "/api/history?page=2&page_size=2", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Items      []models.NumberLog `json:"items"`
		Total      int                `json:"total"`
		Page       int                `json:"page"`
		TotalPages int                `json:"total_pages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Items, 2)
}
