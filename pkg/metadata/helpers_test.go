package metadata

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/Gobusters/ectologger"
	"github.com/starsandeep/sfsync/pkg/fields"
	"github.com/starsandeep/sfsync/pkg/models"
)

var errUnavailable = errors.New("metadata API unavailable")

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(ectologger.EctoLogMessage) {})
}

// fakeProvider serves canned responses and counts calls. A non-nil gate
// blocks every call until it is closed.
type fakeProvider struct {
	mu           sync.Mutex
	mappings     map[string][]models.FieldMappingEntry
	objects      map[string]*fields.Object
	mappingErr   error
	metadataErr  map[fields.Side]error
	gate         chan struct{}
	mappingCalls atomic.Int32
	objectCalls  atomic.Int32
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		mappings:    map[string][]models.FieldMappingEntry{},
		objects:     map[string]*fields.Object{},
		metadataErr: map[fields.Side]error{},
	}
}

func (f *fakeProvider) GetFieldMapping(ctx context.Context, objectName string) ([]models.FieldMappingEntry, error) {
	f.mappingCalls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mappingErr != nil {
		return nil, f.mappingErr
	}
	return f.mappings[objectName], nil
}

func (f *fakeProvider) GetObjectMetadata(ctx context.Context, objectName string, side fields.Side) (*fields.Object, error) {
	f.objectCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.metadataErr[side]; err != nil {
		return nil, err
	}
	object, ok := f.objects[objectName+"|"+string(side)]
	if !ok {
		return nil, errUnavailable
	}
	return object, nil
}

func (f *fakeProvider) setMappingErr(err error) {
	f.mu.Lock()
	f.mappingErr = err
	f.mu.Unlock()
}
