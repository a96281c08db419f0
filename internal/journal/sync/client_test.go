package sync

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPClientPull(t *testing.T) {
	at := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sync/updates" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("auth header = %q", got)
		}
		if got := r.URL.Query().Get("since"); got != at.Format(time.RFC3339) {
			t.Errorf("since = %q", got)
		}
		json.NewEncoder(w).Encode(pullResponse{Changes: []StoreRecords{
			{Store: "tasks", Records: []Record{{ID: "t1", UpdatedAt: at, Body: []byte(`{}`)}}},
		}})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "tok")
	changes, err := client.Pull(context.Background(), "alice", at)
	if err != nil {
		t.Fatalf("Pull failed: %v", err)
	}
	if len(changes) != 1 || changes[0].Store != "tasks" {
		t.Errorf("changes = %+v", changes)
	}
}

func TestHTTPClientPush(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/sync" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var req pushRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.UserID != "alice" {
			t.Errorf("userId = %q", req.UserID)
		}
		json.NewEncoder(w).Encode(PushResponse{Accepted: 1})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "tok")
	resp, err := client.Push(context.Background(), "alice", []StoreRecords{
		{Store: "tasks", Records: []Record{{ID: "t1", Body: []byte(`{}`)}}},
	})
	if err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if resp.Accepted != 1 {
		t.Errorf("accepted = %d, want 1", resp.Accepted)
	}
}

func TestHTTPClientErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantAuth  bool
		wantRetry bool
	}{
		{"unauthorized", http.StatusUnauthorized, true, false},
		{"server error", http.StatusInternalServerError, false, true},
		{"bad gateway", http.StatusBadGateway, false, true},
		{"bad request", http.StatusBadRequest, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewHTTPClient(server.URL, "tok")
			_, err := client.Pull(context.Background(), "alice", time.Time{})
			if err == nil {
				t.Fatal("expected error")
			}

			var authErr *AuthError
			if errors.As(err, &authErr) != tt.wantAuth {
				t.Errorf("AuthError = %v, want %v (err: %v)", !tt.wantAuth, tt.wantAuth, err)
			}
			var transientErr *TransientError
			if errors.As(err, &transientErr) != tt.wantRetry {
				t.Errorf("TransientError = %v, want %v (err: %v)", !tt.wantRetry, tt.wantRetry, err)
			}
		})
	}
}

func TestHTTPClientNetworkFailureIsTransient(t *testing.T) {
	// Point at a closed server.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewHTTPClient(server.URL, "tok")
	_, err := client.Pull(context.Background(), "alice", time.Time{})

	var transientErr *TransientError
	if !errors.As(err, &transientErr) {
		t.Errorf("error = %v, want *TransientError", err)
	}
}
