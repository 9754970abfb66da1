package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// staticTokens is a TokenSource returning a fixed token.
type staticTokens string

func (s staticTokens) CurrentValidToken() string { return string(s) }

func TestCall_AttachesBearerWhenTokenValid(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]interface{}{"result": map[string]string{"ok": "yes"}, "id": 1})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticTokens("tok-123"))
	var result map[string]string
	if err := c.Call(context.Background(), "project_list", nil, &result); err != nil {
		t.Fatalf("Call() error: %v", err)
	}

	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok-123")
	}
	if result["ok"] != "yes" {
		t.Errorf("result = %v", result)
	}
}

func TestCall_NoBearerWhenUnauthenticated(t *testing.T) {
	var gotAuth string
	var sawHeader bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, sawHeader = r.Header["Authorization"]
		json.NewEncoder(w).Encode(map[string]interface{}{"result": true, "id": 1})
	}))
	defer srv.Close()

	// Expired/absent token: the call goes out bare, not blocked.
	for _, tokens := range []TokenSource{nil, staticTokens("")} {
		c := NewClient(srv.URL, tokens)
		if err := c.Call(context.Background(), "auth_login", nil, nil); err != nil {
			t.Fatalf("Call() error: %v", err)
		}
		if sawHeader {
			t.Errorf("unauthenticated call sent Authorization = %q", gotAuth)
		}
	}
}

func TestCall_RequestEnvelope(t *testing.T) {
	var got request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]interface{}{"result": nil, "id": 1})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	params := map[string]string{"name": "demo"}
	if err := c.Call(context.Background(), "project_create", params, nil); err != nil {
		t.Fatalf("Call() error: %v", err)
	}

	if got.Method != "project_create" {
		t.Errorf("method = %q, want project_create", got.Method)
	}
}

func TestCall_ClassifiesNonSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"message":"rate limit exceeded"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	err := c.Call(context.Background(), "project_list", nil, nil)

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("Call() error = %T (%v), want *Error", err, err)
	}
	if apiErr.Kind != KindRateLimited || apiErr.StatusCode != 429 {
		t.Errorf("classified as %s/%d, want rate_limited/429", apiErr.Kind, apiErr.StatusCode)
	}
	if apiErr.RetryAfter == nil || *apiErr.RetryAfter != 7 {
		t.Errorf("RetryAfter = %v, want 7", apiErr.RetryAfter)
	}
	if apiErr.Detail() != "rate limit exceeded" {
		t.Errorf("Detail() = %q", apiErr.Detail())
	}
}

func TestCall_RPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"code": -32601, "message": "method not found"},
			"id":    1,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	err := c.Call(context.Background(), "nope", nil, nil)

	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("Call() error = %T (%v), want *RPCError", err, err)
	}
	if rpcErr.Code != -32601 || rpcErr.Message != "method not found" {
		t.Errorf("rpc error = %+v", rpcErr)
	}
}

func TestCall_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL, nil)
	if err := c.Call(ctx, "project_list", nil, nil); err == nil {
		t.Error("Call() with cancelled context should fail")
	}
}
