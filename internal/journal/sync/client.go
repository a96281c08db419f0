package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPClient talks to the journal backend's sync endpoints.
type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewHTTPClient creates a sync client for the given backend. The token is
// sent as a bearer credential on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type pushRequest struct {
	UserID  string         `json:"userId"`
	Changes []StoreRecords `json:"changes"`
}

type pullResponse struct {
	Changes []StoreRecords `json:"changes"`
}

// Push uploads local changes in one request.
func (c *HTTPClient) Push(ctx context.Context, userID string, changes []StoreRecords) (*PushResponse, error) {
	body, err := json.Marshal(pushRequest{UserID: userID, Changes: changes})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sync upload: %w", err)
	}

	data, err := c.do(ctx, http.MethodPost, "/api/sync", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var resp PushResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse sync upload response: %w", err)
	}
	return &resp, nil
}

// Pull fetches changes made on the backend after since.
func (c *HTTPClient) Pull(ctx context.Context, userID string, since time.Time) ([]StoreRecords, error) {
	query := url.Values{"userId": {userID}}
	if !since.IsZero() {
		query.Set("since", since.UTC().Format(time.RFC3339))
	}

	data, err := c.do(ctx, http.MethodGet, "/api/sync/updates?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var resp pullResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse sync download response: %w", err)
	}
	return resp.Changes, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build sync request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransientError{Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, &AuthError{Err: fmt.Errorf("backend returned %s", resp.Status)}
	case resp.StatusCode >= 500:
		return nil, &TransientError{Err: fmt.Errorf("backend returned %s", resp.Status)}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("sync request failed: %s: %s", resp.Status, strings.TrimSpace(string(data)))
	}
	return data, nil
}
