package session

import (
	"time"

	"github.com/starsandeep/sfsync/pkg/mapping"
	"github.com/starsandeep/sfsync/pkg/metadata"
	"github.com/starsandeep/sfsync/pkg/models"
)

// Snapshot is a consistent copy of a session's state.
type Snapshot struct {
	ID                string                  `json:"id"`
	UserID            string                  `json:"user_id,omitempty"`
	DraftID           string                  `json:"draft_id,omitempty"`
	Selection         Selection               `json:"selection"`
	Generation        uint64                  `json:"generation"`
	Loaded            bool                    `json:"loaded"`
	FetchStatus       metadata.FetchStatus    `json:"fetch_status,omitempty"`
	PicklistAvailable bool                    `json:"picklist_available"`
	Rows              []models.MappingRow     `json:"rows"`
	Resolved          []mapping.ResolutionKey `json:"resolved"`
	Evaluation        models.Evaluation       `json:"evaluation"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
}

// Snapshot copies the state and evaluates it in one critical section.
func (s *Session) Snapshot(evaluator *mapping.Evaluator) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	eval := s.evaluateLocked(evaluator)
	return Snapshot{
		ID:                s.id,
		UserID:            s.userID,
		DraftID:           s.draftID,
		Selection:         s.selection,
		Generation:        s.generation,
		Loaded:            s.loaded,
		FetchStatus:       s.fetchStatus,
		PicklistAvailable: eval.PicklistAvailable,
		Rows:              models.CloneRows(s.rows),
		Resolved:          s.resolved.Keys(),
		Evaluation:        eval,
		CreatedAt:         s.createdAt,
		UpdatedAt:         s.touchedAt,
	}
}
