package mapping

import (
	"strings"

	"github.com/Gobusters/ectolinq"
	"github.com/starsandeep/sfsync/pkg/classify"
	"github.com/starsandeep/sfsync/pkg/models"
)

// RowFromEntry builds a fresh row from a metadata API mapping entry and runs
// attribute inference over it.
func RowFromEntry(entry models.FieldMappingEntry) models.MappingRow {
	source := strings.TrimSpace(entry.Source)
	target := strings.TrimSpace(entry.Target)
	pii := classify.ClassifyPII(source)

	return models.MappingRow{
		SourceField:   source,
		SourceType:    classify.EffectiveType(source, models.FieldType(entry.SourceType)),
		TargetField:   target,
		TargetType:    classify.EffectiveType(target, models.FieldType(entry.TargetType)),
		IsPrimaryKey:  classify.IsPrimaryKey(source),
		IncludeInSync: true,
		IsPII:         pii.IsPII(),
		PIICategory:   pii.Category,
		MaskPII:       pii.IsPII(),
		DefaultValue:  entry.DefaultValue,
		IsError:       entry.IsError,
		IsWarning:     entry.IsWarning,
		ErrorMessage:  entry.ErrorMessage,
		SuggestedFix:  entry.SuggestedFix,
		ValueMap:      append([]models.ValueMapEntry(nil), entry.ValueMap...),
	}
}

// RowsFromFieldMapping converts a fetched field mapping into rows, keeping the
// API's order. Entries with a blank source are kept so the gate can report them.
func RowsFromFieldMapping(entries []models.FieldMappingEntry) []models.MappingRow {
	return ectolinq.Map(entries, RowFromEntry)
}

// Normalize re-runs attribute inference on rows that arrived from outside the
// fetch pipeline (request bodies, files). Types get the disguise override,
// IsPII and PIICategory are re-derived, and user-owned flags are left alone.
func Normalize(rows []models.MappingRow) []models.MappingRow {
	out := make([]models.MappingRow, len(rows))
	for i, row := range rows {
		row = row.Clone()
		row.SourceField = strings.TrimSpace(row.SourceField)
		row.TargetField = strings.TrimSpace(row.TargetField)
		row.SourceType = classify.EffectiveType(row.SourceField, row.SourceType)
		row.TargetType = classify.EffectiveType(row.TargetField, row.TargetType)
		pii := classify.ClassifyPII(row.SourceField)
		row.IsPII = pii.IsPII()
		row.PIICategory = pii.Category
		out[i] = row
	}
	return out
}

// FindRow returns the index of the first row with the given source field, or -1.
func FindRow(rows []models.MappingRow, sourceField string) int {
	for i, row := range rows {
		if row.SourceField == sourceField {
			return i
		}
	}
	return -1
}
