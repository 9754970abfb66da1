// Package indexer queries indexed blockchain state through the platform API,
// with an optional local response cache.
package indexer

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/relayforge/relayforge-cli/internal/api"
	"github.com/relayforge/relayforge-cli/internal/log"
)

// Query describes one indexer read.
type Query struct {
	ChainID uint64          `json:"chainId"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Client runs indexer queries. cache may be nil to disable caching entirely.
type Client struct {
	api   *api.Client
	cache *Cache
}

// NewClient creates an indexer client.
func NewClient(apiClient *api.Client, cache *Cache) *Client {
	return &Client{api: apiClient, cache: cache}
}

// Run executes a query, consulting the local cache first unless bypass is
// set. The response shape is opaque JSON.
func (c *Client) Run(ctx context.Context, q Query, bypassCache bool) (json.RawMessage, error) {
	key := cacheKey(q)

	if c.cache != nil && !bypassCache {
		if cached, ok := c.cache.Get(key); ok {
			log.Cache.Debug().Str("key", key).Msg("indexer cache hit")
			return json.RawMessage(cached), nil
		}
	}

	var result json.RawMessage
	if err := c.api.Call(ctx, "indexer_query", q, &result); err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(key, result, DefaultCacheTTL); err != nil {
			// A broken cache degrades silently; the query itself succeeded.
			log.Cache.Warn().Err(err).Msg("caching indexer response failed")
		}
	}
	return result, nil
}

// cacheKey derives a stable key from the query's chain, method, and a
// digest of its parameters.
func cacheKey(q Query) string {
	h := blake3.New()
	h.Write(q.Params)
	digest := hex.EncodeToString(h.Sum(nil)[:8])
	return fmt.Sprintf("indexer/%d/%s/%s", q.ChainID, q.Method, digest)
}
