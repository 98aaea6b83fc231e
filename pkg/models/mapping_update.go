package models

import "time"

// FieldSyncMetadata is the per-field metadata handed to the wizard shell.
type FieldSyncMetadata struct {
	IncludeInSync bool `json:"includeInSync"`
	IsPrimaryKey  bool `json:"isPrimaryKey"`
	MaskPII       bool `json:"maskPII"`
	IsPII         bool `json:"isPII"`
}

// MappingUpdate is the onUpdateMappings payload emitted when the user advances
// past the mapping step. The JSON shape matches what the wizard shell consumes.
type MappingUpdate struct {
	Mappings        map[string]string            `json:"mappings"`
	Transformations map[string]any               `json:"transformations"`
	SelectedFields  []string                     `json:"selectedFields"`
	SyncAllFields   bool                         `json:"syncAllFields"`
	Metadata        map[string]FieldSyncMetadata `json:"metadata"`
}

// MappingCompletedEvent is published when a session completes the mapping step.
type MappingCompletedEvent struct {
	SessionID    string        `json:"session_id"`
	UserID       string        `json:"user_id,omitempty"`
	SourceObject string        `json:"source_object"`
	TargetObject string        `json:"target_object"`
	Update       MappingUpdate `json:"update"`
	CompletedAt  time.Time     `json:"completed_at"`
}
