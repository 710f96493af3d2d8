// Package cache implements the optional doc cache (spec §11.3): the parsed,
// validated item graph the Doc Loader produces is gob-encoded and stored in
// Redis keyed by the SHA-256 of the raw doc bytes, so repeated runs against
// an unchanged doc dump skip JSON unmarshalling and schema validation.
//
// The cache is an optimization only — every pipeline invariant holds
// identically whether or not it is enabled or populated.
package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gigainfosystems/buffi/codegen/naming"
	"github.com/gigainfosystems/buffi/docloader"
)

// DocCache is the interface the pipeline depends on. NoopCache and
// RedisCache both implement it so the pipeline runs identically with
// caching disabled or enabled.
type DocCache interface {
	// Get returns the cached graph for rawDoc's digest, or found=false on a
	// miss (including a miss forced by a schema-version mismatch).
	Get(ctx context.Context, rawDoc []byte) (g *docloader.Graph, found bool, err error)
	// Put stores g under rawDoc's digest.
	Put(ctx context.Context, rawDoc []byte, g *docloader.Graph) error
}

// Digest returns the hex-encoded SHA-256 of rawDoc, the digest RedisCache
// keys its entries on.
func Digest(rawDoc []byte) string {
	sum := sha256.Sum256(rawDoc)
	return hex.EncodeToString(sum[:])
}

// entry is the gob-encoded envelope stored in Redis. SchemaVersion records
// the format_version the graph was validated under at write time; a cache
// populated by a generator guarding a different supported range is not
// trustworthy and must be treated as a miss (spec §11.3).
type entry struct {
	SchemaVersion int
	Graph         *docloader.Graph
}

// NoopCache never stores or returns anything. It is the default when no
// cache backend is configured.
type NoopCache struct{}

var _ DocCache = NoopCache{}

func (NoopCache) Get(context.Context, []byte) (*docloader.Graph, bool, error) { return nil, false, nil }
func (NoopCache) Put(context.Context, []byte, *docloader.Graph) error         { return nil }

// RedisCache is the Redis-backed implementation.
type RedisCache struct {
	client        *redis.Client
	ttl           time.Duration
	schemaVersion int
	keyPrefix     string
}

var _ DocCache = (*RedisCache)(nil)

// NewRedisCache connects to addr and returns a RedisCache that stores
// entries validated under schemaVersion (the loader's current maximum
// supported format_version) with the given TTL.
func NewRedisCache(addr string, ttl time.Duration, schemaVersion int) *RedisCache {
	client := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisCache{client: client, ttl: ttl, schemaVersion: schemaVersion, keyPrefix: naming.KeyName("buffi", "doc") + ":"}
}

// Close releases the underlying Redis connection pool.
func (c *RedisCache) Close() error { return c.client.Close() }

// Get looks up the graph cached for rawDoc's digest.
func (c *RedisCache) Get(ctx context.Context, rawDoc []byte) (*docloader.Graph, bool, error) {
	key := c.keyPrefix + Digest(rawDoc)
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("doc cache get %s: %w", key, err)
	}

	var e entry
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&e); err != nil {
		return nil, false, fmt.Errorf("doc cache decode %s: %w", key, err)
	}
	if e.SchemaVersion != c.schemaVersion {
		// Stale entry validated under a different supported range; force a
		// re-load from the raw doc rather than trust it (spec §11.3).
		return nil, false, nil
	}
	return e.Graph, true, nil
}

// Put stores g under rawDoc's digest with the configured TTL.
func (c *RedisCache) Put(ctx context.Context, rawDoc []byte, g *docloader.Graph) error {
	key := c.keyPrefix + Digest(rawDoc)
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entry{SchemaVersion: c.schemaVersion, Graph: g}); err != nil {
		return fmt.Errorf("doc cache encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, buf.Bytes(), c.ttl).Err(); err != nil {
		return fmt.Errorf("doc cache set %s: %w", key, err)
	}
	return nil
}
