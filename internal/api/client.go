// Package api is the typed HTTP client for the Controle backend. All requests
// carry the ambient session cookie; callers never handle credential material.
// A 401 from any endpoint is published on the auth bus exactly once before
// the call fails, so the session store can react globally while the caller
// still sees the local error.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/controle-pgm/controle/internal/authbus"
)

// Client represents an HTTP client for the Controle API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	bus        *authbus.Bus
}

// New creates a new API client against baseURL. The cookie jar holds the
// HttpOnly session cookie between calls. bus may be nil, in which case 401
// responses fail the call without a global signal.
func New(baseURL string, bus *authbus.Bus) *Client {
	jar, _ := cookiejar.New(nil)

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		bus:     bus,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
	}
}

// SetHTTPClient sets a custom HTTP client. If the client has no cookie jar,
// one is attached so the session credential keeps flowing.
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	if httpClient.Jar == nil {
		jar, _ := cookiejar.New(nil)
		httpClient.Jar = jar
	}
	c.httpClient = httpClient
}

// HTTPClient exposes the underlying HTTP client, mainly so the CLI can
// persist and restore the session cookie around invocations.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get performs a GET request and decodes the JSON response into out.
func (c *Client) Get(path string, out any) error {
	return c.do(http.MethodGet, path, nil, out)
}

// Post performs a POST request with an optional JSON body.
func (c *Client) Post(path string, body, out any) error {
	return c.do(http.MethodPost, path, body, out)
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(path string, body, out any) error {
	return c.do(http.MethodPatch, path, body, out)
}

// Delete performs a DELETE request.
func (c *Client) Delete(path string, out any) error {
	return c.do(http.MethodDelete, path, nil, out)
}

// do runs one request against the backend. Error contract:
//   - response never arrived: *ConnectionError
//   - 401: auth bus signal fires once, then *RequestError with status 401
//   - other non-2xx: *RequestError carrying a best-effort parsed body
//   - 204: success, out is left untouched
//   - other 2xx: JSON-decoded into out when out is non-nil
func (c *Client) do(method, path string, body, out any) error {
	url := c.baseURL + "/api" + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ConnectionError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		if c.bus != nil {
			c.bus.Publish()
		}
		return &RequestError{Status: resp.StatusCode, StatusText: resp.Status, Body: parseErrorBody(resp.Body)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{Status: resp.StatusCode, StatusText: resp.Status, Body: parseErrorBody(resp.Body)}
	}

	if resp.StatusCode == http.StatusNoContent || out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// parseErrorBody decodes the structured error payload, returning nil when
// the body is empty or not JSON.
func parseErrorBody(r io.Reader) *ErrorBody {
	data, err := io.ReadAll(io.LimitReader(r, 1<<20))
	if err != nil || len(data) == 0 {
		return nil
	}

	var body ErrorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return nil
	}
	if body.Error == "" && body.Message == "" {
		return nil
	}
	return &body
}
