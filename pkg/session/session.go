// Package session holds the state of one wizard instance's mapping step.
//
// A Session is the single owner of its rows, resolved set, fetched metadata
// per object pair and failed-pair set. Every method takes the session lock, so HTTP
// requests for the same session may arrive concurrently.
package session

import (
	"sync"
	"time"

	"github.com/starsandeep/sfsync/pkg/errors"
	"github.com/starsandeep/sfsync/pkg/fields"
	"github.com/starsandeep/sfsync/pkg/fingerprint"
	"github.com/starsandeep/sfsync/pkg/mapping"
	"github.com/starsandeep/sfsync/pkg/metadata"
	"github.com/starsandeep/sfsync/pkg/models"
)

// Selection is the object pair chosen in the earlier wizard steps.
type Selection struct {
	SourceObject string `json:"source_object" yaml:"source_object" validate:"required"`
	TargetObject string `json:"target_object" yaml:"target_object" validate:"required"`
}

type pair struct {
	source string
	target string
}

func pairOf(selection Selection) pair {
	return pair{source: selection.SourceObject, target: selection.TargetObject}
}

type pairMetadata struct {
	source *fields.Object
	target *fields.Object
}

// Ticket identifies the selection a load was started for.
type Ticket struct {
	Selection  Selection
	Generation uint64
}

// LoadResult is what a load fetched. Source and Target are only meaningful
// when PairFetched is set.
type LoadResult struct {
	Entries     []models.FieldMappingEntry
	FetchStatus metadata.FetchStatus
	PairFetched bool
	Source      *fields.Object
	Target      *fields.Object
}

// Session is one wizard instance's mapping step. Create it with New.
type Session struct {
	mu sync.Mutex

	id         string
	userID     string
	selection  Selection
	generation uint64

	rows        []models.MappingRow
	resolved    *mapping.ResolvedSet
	source      *fields.Object
	target      *fields.Object
	pairs       map[pair]pairMetadata
	attempted   map[pair]struct{}
	fingerprint string
	fetchStatus metadata.FetchStatus
	loaded      bool
	closed      bool
	draftID     string

	createdAt time.Time
	touchedAt time.Time
}

// New returns an empty, unloaded session for the selection.
func New(id, userID string, selection Selection, now time.Time) *Session {
	return &Session{
		id:        id,
		userID:    userID,
		selection: selection,
		rows:      []models.MappingRow{},
		resolved:  mapping.NewResolvedSet(),
		pairs:     make(map[pair]pairMetadata),
		attempted: make(map[pair]struct{}),
		createdAt: now,
		touchedAt: now,
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) UserID() string {
	return s.userID
}

func (s *Session) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

// Select changes the object pair. Rows and resolutions belong to the old pair
// and are dropped; any load still in flight becomes stale. Metadata already
// fetched for the new pair is put back.
func (s *Session) Select(selection Selection) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	if selection != s.selection {
		s.selection = selection
		s.generation++
		s.rows = []models.MappingRow{}
		s.resolved.Clear()
		cached := s.pairs[pairOf(selection)]
		s.source, s.target = cached.source, cached.target
		s.fingerprint = ""
		s.fetchStatus = ""
		s.loaded = false
	}
	return Ticket{Selection: s.selection, Generation: s.generation}
}

// BeginLoad returns the ticket a load must present to ApplyLoad.
func (s *Session) BeginLoad() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Ticket{Selection: s.selection, Generation: s.generation}
}

// ClaimPair reports whether picklist metadata for the ticket's pair still has
// to be fetched, and marks it attempted. A pair that was fetched, or whose
// fetch failed, is not claimed again. The claimer must follow up with
// StorePair or ReleasePair.
func (s *Session) ClaimPair(ticket Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairOf(ticket.Selection)
	if _, ok := s.pairs[key]; ok {
		return false
	}
	if _, done := s.attempted[key]; done {
		return false
	}
	s.attempted[key] = struct{}{}
	return true
}

// StorePair keeps successfully fetched metadata for the ticket's pair for the
// rest of the session, whether or not the load that fetched it is applied.
func (s *Session) StorePair(ticket Ticket, source, target *fields.Object) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairOf(ticket.Selection)
	s.pairs[key] = pairMetadata{source: source, target: target}
	delete(s.attempted, key)
}

// ReleasePair drops a claim whose fetch did not complete, so a later load
// tries the pair again.
func (s *Session) ReleasePair(ticket Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempted, pairOf(ticket.Selection))
}

// ApplyLoad merges a load result into the session. It returns false, changing
// nothing, when the session was closed or the selection moved on since the
// ticket was issued.
func (s *Session) ApplyLoad(ticket Ticket, result LoadResult) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || ticket.Generation != s.generation || ticket.Selection != s.selection {
		return false, nil
	}

	if result.PairFetched {
		s.source, s.target = result.Source, result.Target
	} else if cached, ok := s.pairs[pairOf(s.selection)]; ok {
		s.source, s.target = cached.source, cached.target
	}

	fp, err := fingerprint.Load(result.Entries, s.source, s.target)
	if err != nil {
		return false, err
	}
	if fingerprint.HasChanged(s.fingerprint, fp) {
		s.resolved.Clear()
	}
	s.fingerprint = fp

	s.rows = mapping.Reconcile(s.rows, mapping.RowsFromFieldMapping(result.Entries))
	s.fetchStatus = result.FetchStatus
	s.loaded = true
	return true, nil
}

// Evaluate runs stages 3 to 6 over the current state.
func (s *Session) Evaluate(evaluator *mapping.Evaluator) models.Evaluation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evaluateLocked(evaluator)
}

func (s *Session) evaluateLocked(evaluator *mapping.Evaluator) models.Evaluation {
	return evaluator.Evaluate(mapping.Input{
		Rows:           s.rows,
		SourceMetadata: s.source,
		TargetMetadata: s.target,
		Resolved:       s.resolved,
	})
}

// UpdateRow applies a user edit to one row.
func (s *Session) UpdateRow(sourceField string, update mapping.RowUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := mapping.ApplyRowUpdate(s.rows, sourceField, update, s.target)
	if err != nil {
		return err
	}
	s.rows = rows
	return nil
}

// Resolve records an explicit resolution. Only a mismatch that is currently
// reported can be resolved.
func (s *Session) Resolve(key mapping.ResolutionKey, evaluator *mapping.Evaluator) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key = key.Normalized()
	eval := s.evaluateLocked(evaluator)
	if !mapping.HasMismatch(eval.Mismatches, key) {
		return errors.NewValidationError("no such mismatch").
			AddField(key.SourceField).
			AddTarget(key.TargetField).
			AddCheck(string(key.Kind))
	}
	s.resolved.Resolve(key)
	return nil
}

// Restore replaces rows and resolutions, e.g. from a draft. fp is the
// fingerprint of the metadata the resolutions were made against; a later load
// whose metadata differs clears them. Fetched metadata is left untouched.
func (s *Session) Restore(rows []models.MappingRow, resolved []mapping.ResolutionKey, fp string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = mapping.Normalize(rows)
	s.resolved = mapping.NewResolvedSet(resolved...)
	s.fingerprint = fp
	s.loaded = true
}

// Fingerprint is the hash of the metadata last applied, or empty before the
// first load.
func (s *Session) Fingerprint() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fingerprint
}

// DraftID is the draft this session saves to. Empty until the first save or
// when the session was not resumed from a draft.
func (s *Session) DraftID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draftID
}

func (s *Session) SetDraftID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draftID = id
}

// Rows returns a copy of the current rows.
func (s *Session) Rows() []models.MappingRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneRows(s.rows)
}

// ResolvedKeys returns the resolutions in a stable order.
func (s *Session) ResolvedKeys() []mapping.ResolutionKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolved.Keys()
}

// Close discards the session. Loads that finish afterwards are ignored.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Touch records activity so the idle sweeper keeps the session.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchedAt = now
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchedAt
}
