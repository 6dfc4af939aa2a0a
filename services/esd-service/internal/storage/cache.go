package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sas-esd/esdmail/libs/ids"
)

const cacheKeyPrefix = "esd:mail_template_translation:"

// Cache is the subset of a Redis client the template cache needs.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// CachedTemplates keeps translations in Redis as JSON. Redis failures fall
// through to the database.
type CachedTemplates struct {
	next   TranslationFinder
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedTemplates(next TranslationFinder, cache Cache, ttl time.Duration, logger *slog.Logger) *CachedTemplates {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedTemplates{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (c *CachedTemplates) FindTranslation(ctx context.Context, templateID []byte, languageIDs ...[]byte) (Translation, error) {
	key := cacheKey(templateID, languageIDs)

	raw, err := c.cache.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var t Translation
		if jerr := json.Unmarshal(raw, &t); jerr == nil {
			return t, nil
		}
		c.logger.Warn("template cache entry unreadable", "key", key)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("template cache get failed", "key", key, "err", err)
	}

	t, err := c.next.FindTranslation(ctx, templateID, languageIDs...)
	if err != nil {
		return Translation{}, err
	}
	if payload, err := json.Marshal(t); err == nil {
		if err := c.cache.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("template cache set failed", "key", key, "err", err)
		}
	}
	return t, nil
}

func cacheKey(templateID []byte, languageIDs [][]byte) string {
	langs := make([]string, len(languageIDs))
	for i, id := range languageIDs {
		langs[i] = ids.BytesToHex(id)
	}
	return cacheKeyPrefix + ids.BytesToHex(templateID) + ":" + strings.Join(langs, ",")
}
