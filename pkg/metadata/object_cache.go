package metadata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/starsandeep/sfsync/pkg/fields"
	"github.com/starsandeep/sfsync/pkg/metrics"
	"github.com/starsandeep/sfsync/pkg/redis"
)

// JSONStore is the slice of the Redis client the object cache needs.
type JSONStore interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, expiration time.Duration) error
}

// CachedProvider serves object metadata from a shared store before asking the
// wrapped provider. Field mappings always go to the provider. Store failures
// are logged and otherwise ignored.
type CachedProvider struct {
	Provider
	store  JSONStore
	ttl    time.Duration
	logger ectologger.Logger
}

func NewCachedProvider(next Provider, store JSONStore, ttl time.Duration, logger ectologger.Logger) *CachedProvider {
	return &CachedProvider{
		Provider: next,
		store:    store,
		ttl:      ttl,
		logger:   logger,
	}
}

func ObjectCacheKey(objectName string, side fields.Side) string {
	return fmt.Sprintf("sfsync:metadata:%s:%s", objectName, side)
}

func (p *CachedProvider) GetObjectMetadata(ctx context.Context, objectName string, side fields.Side) (*fields.Object, error) {
	key := ObjectCacheKey(objectName, side)
	log := p.logger.WithContext(ctx).WithFields(map[string]any{"object": objectName, "side": side})

	var cached fields.Object
	err := p.store.GetJSON(ctx, key, &cached)
	switch {
	case err == nil:
		metrics.MetadataFetchesTotal.WithLabelValues(kindObjectMetadata, "cache_hit").Inc()
		cached.Normalize()
		return &cached, nil
	case !errors.Is(err, redis.ErrNotFound):
		log.WithError(err).Warn("failed to read object metadata cache")
	}

	object, err := p.Provider.GetObjectMetadata(ctx, objectName, side)
	if err != nil {
		return nil, err
	}

	if err := p.store.SetJSON(ctx, key, object, p.ttl); err != nil {
		log.WithError(err).Warn("failed to write object metadata cache")
	}
	return object, nil
}
