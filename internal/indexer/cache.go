package indexer

import (
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/relayforge/relayforge-cli/internal/log"
)

// DefaultCacheTTL is how long a cached indexer response stays fresh.
const DefaultCacheTTL = 5 * time.Minute

// Cache is a local TTL cache for indexer responses, backed by Badger.
// Entries expire server-side of the cache; a miss and an expired entry are
// indistinguishable to callers.
type Cache struct {
	db *badger.DB
}

// OpenCache opens (or creates) the cache at the given directory.
func OpenCache(path string) (*Cache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable badger's built-in logging.

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open cache at %s: %w", path, err)
	}
	return &Cache{db: db}, nil
}

// Get retrieves a cached response. The second return is false on a miss.
func (c *Cache) Get(key string) ([]byte, bool) {
	var val []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, false
	}
	if err != nil {
		log.Cache.Warn().Str("key", key).Err(err).Msg("cache read failed")
		return nil, false
	}
	return val, true
}

// Set stores a response with the given TTL.
func (c *Cache) Set(key string, value []byte, ttl time.Duration) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("cache write: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
