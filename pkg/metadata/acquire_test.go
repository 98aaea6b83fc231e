package metadata

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/starsandeep/sfsync/pkg/fields"
	"github.com/starsandeep/sfsync/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquirer_FieldMapping(t *testing.T) {
	fetched := []models.FieldMappingEntry{{Source: "Name", SourceType: "String", Target: "Name", TargetType: "String"}}

	t.Run("fresh fetch", func(t *testing.T) {
		provider := newFakeProvider()
		provider.mappings["Account"] = fetched
		acquirer := NewAcquirer(provider, nil, testLogger())

		entries, status := acquirer.FieldMapping(context.Background(), "Account")
		assert.Equal(t, FetchStatusOK, status)
		assert.Equal(t, fetched, entries)
	})

	t.Run("failure falls back to the last good mapping", func(t *testing.T) {
		provider := newFakeProvider()
		provider.mappings["Account"] = fetched
		acquirer := NewAcquirer(provider, nil, testLogger())

		_, status := acquirer.FieldMapping(context.Background(), "Account")
		require.Equal(t, FetchStatusOK, status)

		provider.setMappingErr(errUnavailable)
		entries, status := acquirer.FieldMapping(context.Background(), "Account")
		assert.Equal(t, FetchStatusFallbackCached, status)
		assert.Equal(t, fetched, entries)
	})

	t.Run("failure with nothing cached is empty", func(t *testing.T) {
		provider := newFakeProvider()
		provider.setMappingErr(errUnavailable)
		acquirer := NewAcquirer(provider, nil, testLogger())

		entries, status := acquirer.FieldMapping(context.Background(), "Account")
		assert.Equal(t, FetchStatusFallbackEmpty, status)
		assert.NotNil(t, entries)
		assert.Empty(t, entries)
	})

	t.Run("concurrent loads share one fetch", func(t *testing.T) {
		provider := newFakeProvider()
		provider.mappings["Account"] = fetched
		provider.gate = make(chan struct{})
		acquirer := NewAcquirer(provider, nil, testLogger())

		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, status := acquirer.FieldMapping(context.Background(), "Account")
				assert.Equal(t, FetchStatusOK, status)
			}()
		}

		require.Eventually(t, func() bool { return provider.mappingCalls.Load() >= 1 }, time.Second, 5*time.Millisecond)
		time.Sleep(20 * time.Millisecond)
		close(provider.gate)
		wg.Wait()

		assert.Less(t, provider.mappingCalls.Load(), int32(5))
	})

	t.Run("caller cancellation does not fail the fetch", func(t *testing.T) {
		provider := newFakeProvider()
		provider.mappings["Account"] = fetched
		acquirer := NewAcquirer(provider, nil, testLogger())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, status := acquirer.FieldMapping(ctx, "Account")
		assert.Equal(t, FetchStatusOK, status)
	})
}

func TestAcquirer_ObjectPair(t *testing.T) {
	provider := newFakeProvider()
	provider.objects["Account|source"] = &fields.Object{ObjectName: "Account"}
	provider.objects["Account|target"] = &fields.Object{ObjectName: "Account"}
	acquirer := NewAcquirer(provider, nil, testLogger())

	source, target, err := acquirer.ObjectPair(context.Background(), "Account", "Account")
	require.NoError(t, err)
	assert.NotNil(t, source)
	assert.NotNil(t, target)

	provider.metadataErr[fields.SideTarget] = errUnavailable
	source, target, err = acquirer.ObjectPair(context.Background(), "Account", "Account")
	require.Error(t, err)
	assert.Nil(t, source)
	assert.Nil(t, target)
}
