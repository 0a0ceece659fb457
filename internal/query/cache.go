package query

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"
)

const cacheKeyPrefix = "datasage:envelope:"

// Cache stores generated envelopes. Implementations swallow their own
// failures: a broken cache only costs a planner round trip.
type Cache interface {
	Get(ctx context.Context, key string) (*Envelope, bool)
	Set(ctx context.Context, key string, env *Envelope)
}

// CacheKey derives the cache key for a prompt against a dataset. Leading and
// trailing whitespace of the prompt is ignored.
func CacheKey(datasetID int64, prompt string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(prompt)))
	return cacheKeyPrefix + strconv.FormatInt(datasetID, 10) + ":" + hex.EncodeToString(sum[:])
}

// ValkeyCache keeps envelopes in Valkey with a fixed TTL.
type ValkeyCache struct {
	client valkey.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewValkeyCache(client valkey.Client, ttl time.Duration, logger *slog.Logger) *ValkeyCache {
	return &ValkeyCache{client: client, ttl: ttl, logger: logger}
}

func (c *ValkeyCache) Get(ctx context.Context, key string) (*Envelope, bool) {
	data, err := c.client.Do(ctx, c.client.B().Get().Key(key).Build()).AsBytes()
	if err != nil {
		if !valkey.IsValkeyNil(err) {
			c.logger.Warn("envelope cache get", slog.String("key", key), slog.String("error", err.Error()))
		}
		return nil, false
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.logger.Warn("envelope cache decode", slog.String("key", key), slog.String("error", err.Error()))
		return nil, false
	}
	return &env, true
}

func (c *ValkeyCache) Set(ctx context.Context, key string, env *Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		c.logger.Warn("envelope cache encode", slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	resp := c.client.Do(ctx, c.client.B().Set().Key(key).Value(string(data)).Ex(c.ttl).Build())
	if err := resp.Error(); err != nil {
		c.logger.Warn("envelope cache set", slog.String("key", key), slog.String("error", err.Error()))
	}
}
