package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/relayforge/relayforge-cli/internal/log"
)

// DefaultTimeout bounds every API round trip so a hung endpoint cannot wedge
// the process.
const DefaultTimeout = 30 * time.Second

// TokenSource supplies the current valid bearer token, or "" when the caller
// is not (or no longer) authenticated.
type TokenSource interface {
	CurrentValidToken() string
}

// Client issues JSON-RPC style calls to the platform API. Requests carry an
// Authorization header only while a valid token exists; unauthenticated
// calls are sent bare, not blocked, since the login exchange itself must be
// reachable pre-login. The client never retries.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// NewClient creates a client for the given base URL. tokens may be nil for a
// purely unauthenticated client.
func NewClient(baseURL string, tokens TokenSource) *Client {
	return NewClientWithTimeout(baseURL, tokens, DefaultTimeout)
}

// NewClientWithTimeout creates a client with a custom HTTP timeout.
func NewClientWithTimeout(baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		tokens:  tokens,
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the endpoint the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request is the JSON-RPC style request envelope.
type request struct {
	Method string      `json:"method"`
	Params interface{} `json:"params,omitempty"`
	ID     int         `json:"id"`
}

// response is the JSON-RPC style response envelope.
type response struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *rpcError       `json:"error,omitempty"`
	ID     int             `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RPCError is a protocol-level error returned inside a 2xx response body.
type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Call invokes a method and unmarshals the result into the provided pointer.
// If result is nil, the response result is discarded. Non-2xx responses are
// returned as a classified *Error.
func (c *Client) Call(ctx context.Context, method string, params, result interface{}) error {
	body, err := json.Marshal(request{Method: method, Params: params, ID: 1})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	authed := false
	if c.tokens != nil {
		if token := c.tokens.CurrentValidToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
			authed = true
		}
	}
	log.API.Debug().Str("method", method).Bool("authenticated", authed).Msg("api call")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := FromResponse(resp.StatusCode, resp.Header, data)
		log.API.Debug().Str("method", method).Int("status", apiErr.StatusCode).
			Str("kind", string(apiErr.Kind)).Msg("api call failed")
		return apiErr
	}

	var rpcResp response
	if err := json.Unmarshal(data, &rpcResp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if rpcResp.Error != nil {
		return &RPCError{Code: rpcResp.Error.Code, Message: rpcResp.Error.Message}
	}

	if result != nil && rpcResp.Result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
	}
	return nil
}
