package wizard

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/starsandeep/sfsync/internal/repositories/draft"
	"github.com/starsandeep/sfsync/pkg/fields"
	"github.com/starsandeep/sfsync/pkg/mapping"
	"github.com/starsandeep/sfsync/pkg/metadata"
	"github.com/starsandeep/sfsync/pkg/models"
	"github.com/starsandeep/sfsync/pkg/session"
)

var errUnavailable = errors.New("metadata API unavailable")

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(ectologger.EctoLogMessage) {})
}

type fakeProvider struct {
	mu          sync.Mutex
	mappings    map[string][]models.FieldMappingEntry
	objects     map[string]*fields.Object
	mappingErr  error
	gate        chan struct{}
	mappingHits atomic.Int32
	objectHits  atomic.Int32
}

func newFakeProvider() *fakeProvider {
	p := &fakeProvider{
		mappings: map[string][]models.FieldMappingEntry{},
		objects:  map[string]*fields.Object{},
	}

	p.mappings["Account"] = []models.FieldMappingEntry{
		{Source: "Status__c", SourceType: "String", Target: "Status__c", TargetType: "Picklist"},
		{Source: "Rating", SourceType: "Picklist", Target: "Rating", TargetType: "Picklist"},
		{Source: "Email", SourceType: "Email", Target: "Email", TargetType: "Email"},
	}
	p.objects["Account|source"] = &fields.Object{ObjectName: "Account", Fields: fields.Fields{
		picklistField("Status__c", "New", "Open", "Closed"),
		picklistField("Rating", "Hot", "Warm", "Cold", "Frozen"),
		{Name: "Email", Type: models.FieldTypeEmail},
		{Name: "Email2", Type: models.FieldTypeEmail},
	}}
	p.objects["Account|target"] = &fields.Object{ObjectName: "Account", Fields: fields.Fields{
		picklistField("Status__c", "New", "Closed"),
		picklistField("Rating", "Hot"),
		{Name: "Email", Type: models.FieldTypeEmail},
		{Name: "Email2", Type: models.FieldTypeEmail},
	}}

	p.mappings["Contact"] = []models.FieldMappingEntry{
		{Source: "FirstName", SourceType: "String", Target: "FirstName", TargetType: "String"},
	}
	return p
}

func picklistField(name string, values ...string) fields.Field {
	field := fields.Field{Name: name, Type: models.FieldTypePicklist}
	for _, v := range values {
		field.PicklistValues = append(field.PicklistValues, fields.PicklistValue{Label: v, Value: v, IsActive: true})
	}
	return field
}

func (p *fakeProvider) GetFieldMapping(ctx context.Context, objectName string) ([]models.FieldMappingEntry, error) {
	p.mappingHits.Add(1)
	if p.gate != nil {
		<-p.gate
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mappingErr != nil {
		return nil, p.mappingErr
	}
	return p.mappings[objectName], nil
}

func (p *fakeProvider) GetObjectMetadata(ctx context.Context, objectName string, side fields.Side) (*fields.Object, error) {
	p.objectHits.Add(1)
	p.mu.Lock()
	defer p.mu.Unlock()
	object, ok := p.objects[objectName+"|"+string(side)]
	if !ok {
		return nil, errUnavailable
	}
	return object, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.MappingCompletedEvent
	err    error
}

func (p *recordingPublisher) PublishMappingCompleted(ctx context.Context, event models.MappingCompletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

type memoryDrafts struct {
	mu     sync.Mutex
	drafts map[string]draft.Draft
	saves  int
}

func newMemoryDrafts() *memoryDrafts {
	return &memoryDrafts{drafts: map[string]draft.Draft{}}
}

func (m *memoryDrafts) Save(ctx context.Context, d draft.Draft) (draft.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.drafts[d.ID]; ok && existing.UserID != d.UserID {
		return draft.Draft{}, httperror.NewHTTPError(http.StatusNotFound, "draft not found")
	}
	d.UpdatedAt = time.Now()
	m.drafts[d.ID] = d
	m.saves++
	return d, nil
}

func (m *memoryDrafts) Get(ctx context.Context, userID, id string) (draft.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[id]
	if !ok || d.UserID != userID {
		return draft.Draft{}, httperror.NewHTTPError(http.StatusNotFound, "draft not found")
	}
	return d, nil
}

func (m *memoryDrafts) ListByUser(ctx context.Context, userID string) ([]draft.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []draft.Draft{}
	for _, d := range m.drafts {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryDrafts) Delete(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[id]
	if !ok || d.UserID != userID {
		return httperror.NewHTTPError(http.StatusNotFound, "draft not found")
	}
	delete(m.drafts, id)
	return nil
}

type fixture struct {
	service   *Service
	provider  *fakeProvider
	publisher *recordingPublisher
	drafts    *memoryDrafts
}

func newFixture(withDrafts bool) *fixture {
	provider := newFakeProvider()
	publisher := &recordingPublisher{}
	logger := testLogger()

	f := &fixture{provider: provider, publisher: publisher}
	var repo DraftRepository
	if withDrafts {
		f.drafts = newMemoryDrafts()
		repo = f.drafts
	}

	f.service = NewService(
		session.NewManager(time.Hour, logger),
		metadata.NewAcquirer(provider, nil, logger),
		mapping.NewEvaluator(mapping.DefaultPolicy()),
		publisher,
		repo,
		Config{},
		logger,
	)
	return f
}

var account = session.Selection{SourceObject: "Account", TargetObject: "Account"}
