package draft

import (
	"database/sql"
	"time"

	"github.com/starsandeep/sfsync/pkg/database"
	"github.com/starsandeep/sfsync/pkg/mapping"
	"github.com/starsandeep/sfsync/pkg/models"
)

// Draft is a saved, resumable copy of a wizard session's mapping step.
type Draft struct {
	ID           string                  `json:"id"`
	UserID       string                  `json:"user_id"`
	SourceObject string                  `json:"source_object"`
	TargetObject string                  `json:"target_object"`
	Rows         []models.MappingRow     `json:"rows"`
	Resolved     []mapping.ResolutionKey `json:"resolved"`
	FetchStatus  string                  `json:"fetch_status,omitempty"`
	Fingerprint  string                  `json:"fingerprint,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

type DraftRow struct {
	ID           sql.NullString                           `db:"id"`
	UserID       sql.NullString                           `db:"user_id"`
	SourceObject sql.NullString                           `db:"source_object"`
	TargetObject sql.NullString                           `db:"target_object"`
	Rows         database.JSONB[[]models.MappingRow]     `db:"rows"`
	Resolved     database.JSONB[[]mapping.ResolutionKey] `db:"resolved"`
	FetchStatus  sql.NullString                           `db:"fetch_status"`
	Fingerprint  sql.NullString                           `db:"fingerprint"`
	CreatedAt    sql.NullTime                             `db:"created_at"`
	UpdatedAt    sql.NullTime                             `db:"updated_at"`
}

const draftTable = "mapping_drafts"

var draftStruct = database.NewStruct(new(DraftRow))

func FromDraft(d Draft) *DraftRow {
	rows := d.Rows
	if rows == nil {
		rows = []models.MappingRow{}
	}
	resolved := d.Resolved
	if resolved == nil {
		resolved = []mapping.ResolutionKey{}
	}

	return &DraftRow{
		ID:           sql.NullString{String: d.ID, Valid: d.ID != ""},
		UserID:       sql.NullString{String: d.UserID, Valid: true},
		SourceObject: sql.NullString{String: d.SourceObject, Valid: true},
		TargetObject: sql.NullString{String: d.TargetObject, Valid: true},
		Rows:         database.NewJSONB(rows),
		Resolved:     database.NewJSONB(resolved),
		FetchStatus:  sql.NullString{String: d.FetchStatus, Valid: d.FetchStatus != ""},
		Fingerprint:  sql.NullString{String: d.Fingerprint, Valid: d.Fingerprint != ""},
		CreatedAt:    sql.NullTime{Time: d.CreatedAt, Valid: !d.CreatedAt.IsZero()},
		UpdatedAt:    sql.NullTime{Time: d.UpdatedAt, Valid: !d.UpdatedAt.IsZero()},
	}
}

func ToDraft(row *DraftRow) Draft {
	d := Draft{
		ID:           row.ID.String,
		UserID:       row.UserID.String,
		SourceObject: row.SourceObject.String,
		TargetObject: row.TargetObject.String,
		Rows:         row.Rows.GetValue(),
		Resolved:     row.Resolved.GetValue(),
		FetchStatus:  row.FetchStatus.String,
		Fingerprint:  row.Fingerprint.String,
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
	}
	if d.Rows == nil {
		d.Rows = []models.MappingRow{}
	}
	if d.Resolved == nil {
		d.Resolved = []mapping.ResolutionKey{}
	}
	return d
}
