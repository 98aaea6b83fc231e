// Package metadata fetches field mappings and object metadata from the
// metadata API and keeps the fallbacks the wizard relies on when it fails.
package metadata

import (
	"context"

	"github.com/starsandeep/sfsync/pkg/fields"
	"github.com/starsandeep/sfsync/pkg/models"
)

// Provider is the metadata API as the wizard sees it.
type Provider interface {
	GetFieldMapping(ctx context.Context, objectName string) ([]models.FieldMappingEntry, error)
	GetObjectMetadata(ctx context.Context, objectName string, side fields.Side) (*fields.Object, error)
}

// FetchStatus reports where a load's mapping came from.
type FetchStatus string

const (
	FetchStatusOK             FetchStatus = "ok"
	FetchStatusFallbackCached FetchStatus = "fallback_cached"
	FetchStatusFallbackEmpty  FetchStatus = "fallback_empty"
)

const (
	kindFieldMapping   = "field_mapping"
	kindObjectMetadata = "object_metadata"
)
