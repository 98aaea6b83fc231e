package mapping

import (
	"strings"

	"github.com/starsandeep/sfsync/pkg/classify"
	"github.com/starsandeep/sfsync/pkg/errors"
	"github.com/starsandeep/sfsync/pkg/fields"
	"github.com/starsandeep/sfsync/pkg/models"
)

// RowUpdate is a user edit of one row. Nil fields are left unchanged.
type RowUpdate struct {
	TargetField   *string `json:"target_field,omitempty"`
	IncludeInSync *bool   `json:"include_in_sync,omitempty"`
	IsPrimaryKey  *bool   `json:"is_primary_key,omitempty"`
	MaskPII       *bool   `json:"mask_pii,omitempty"`
}

// ApplyRowUpdate returns a copy of rows with the edit applied to the row for
// sourceField. A retargeted row takes its target type from target metadata
// when the new target is known there, and keeps its previous type otherwise.
func ApplyRowUpdate(rows []models.MappingRow, sourceField string, update RowUpdate, target *fields.Object) ([]models.MappingRow, error) {
	idx := FindRow(rows, sourceField)
	if idx < 0 {
		return nil, errors.NewValidationError("row not found").AddField(sourceField).AddCheck("row_update")
	}

	out := models.CloneRows(rows)
	row := out[idx]

	if update.TargetField != nil {
		newTarget := strings.TrimSpace(*update.TargetField)
		if newTarget != row.TargetField {
			row.TargetField = newTarget
			if newTarget == "" {
				row.TargetType = ""
			} else if field, err := target.GetField(newTarget); err == nil {
				row.TargetType = classify.EffectiveType(field.Name, field.Type)
			}
		}
	}
	if update.IncludeInSync != nil {
		row.IncludeInSync = *update.IncludeInSync
	}
	if update.IsPrimaryKey != nil {
		row.IsPrimaryKey = *update.IsPrimaryKey
	}
	if update.MaskPII != nil {
		row.MaskPII = *update.MaskPII
	}

	out[idx] = row
	return out, nil
}
