package metadata

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/starsandeep/sfsync/pkg/fields"
	"github.com/starsandeep/sfsync/pkg/models"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Acquirer runs the acquisition stage. Concurrent requests for the same
// object share one outstanding provider call, and a failed mapping fetch
// falls back to the last good mapping or to nothing.
type Acquirer struct {
	provider Provider
	cache    *MappingCache
	group    singleflight.Group
	logger   ectologger.Logger
}

func NewAcquirer(provider Provider, cache *MappingCache, logger ectologger.Logger) *Acquirer {
	if cache == nil {
		cache = NewMappingCache(DefaultMappingCacheConfig())
	}
	return &Acquirer{
		provider: provider,
		cache:    cache,
		logger:   logger,
	}
}

func (a *Acquirer) Cache() *MappingCache {
	return a.cache
}

// FieldMapping never fails. The status says whether the entries are fresh,
// the cached last-good copy, or an empty stand-in.
func (a *Acquirer) FieldMapping(ctx context.Context, objectName string) ([]models.FieldMappingEntry, FetchStatus) {
	log := a.logger.WithContext(ctx).WithField("object", objectName)

	// the shared call must not die with whichever caller started it
	shared := context.WithoutCancel(ctx)
	v, err, _ := a.group.Do("mapping|"+objectName, func() (any, error) {
		return a.provider.GetFieldMapping(shared, objectName)
	})
	if err == nil {
		entries := v.([]models.FieldMappingEntry)
		a.cache.Put(objectName, entries)
		return cloneEntries(entries), FetchStatusOK
	}

	if cached, ok := a.cache.Get(objectName); ok {
		log.WithError(err).Warn("field mapping fetch failed, using last good mapping")
		return cached, FetchStatusFallbackCached
	}

	log.WithError(err).Warn("field mapping fetch failed, continuing with no rows")
	return []models.FieldMappingEntry{}, FetchStatusFallbackEmpty
}

// ObjectMetadata fetches one side's object schema.
func (a *Acquirer) ObjectMetadata(ctx context.Context, objectName string, side fields.Side) (*fields.Object, error) {
	shared := context.WithoutCancel(ctx)
	v, err, _ := a.group.Do("metadata|"+objectName+"|"+string(side), func() (any, error) {
		return a.provider.GetObjectMetadata(shared, objectName, side)
	})
	if err != nil {
		return nil, err
	}
	return v.(*fields.Object), nil
}

// ObjectPair fetches source and target metadata concurrently. If either side
// fails neither is returned.
func (a *Acquirer) ObjectPair(ctx context.Context, sourceObject, targetObject string) (*fields.Object, *fields.Object, error) {
	var source, target *fields.Object

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		source, err = a.ObjectMetadata(gctx, sourceObject, fields.SideSource)
		return err
	})
	g.Go(func() error {
		var err error
		target, err = a.ObjectMetadata(gctx, targetObject, fields.SideTarget)
		return err
	})

	if err := g.Wait(); err != nil {
		a.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"source_object": sourceObject,
			"target_object": targetObject,
		}).Warn("object metadata unavailable, picklist checks disabled for this pair")
		return nil, nil, err
	}
	return source, target, nil
}
