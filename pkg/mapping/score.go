package mapping

import "github.com/starsandeep/sfsync/pkg/models"

const (
	baseScore               = 100
	unmappedPenalty         = 60
	typeMismatchPenalty     = 20
	picklistErrorPenalty    = 30
	picklistWarningPenalty  = 15
	charLimitErrorPenalty   = 25
	charLimitWarningPenalty = 10
	missingErrorPenalty     = 50
	missingWarningPenalty   = 30
)

// HasTypeMismatch reports a mapped row whose source and target types differ.
// A row whose target type is unknown is not a mismatch.
func HasTypeMismatch(row models.MappingRow) bool {
	return row.IsMapped() && row.TargetType != "" && row.SourceType != row.TargetType
}

// Score computes a row's confidence from the row and the current mismatch sets.
// Penalties add up independently and the result never drops below zero. When
// several mismatches of one kind match the row, the most severe one counts.
func Score(row models.MappingRow, mismatches models.Mismatches) int {
	score := baseScore

	if !row.IsMapped() {
		score -= unmappedPenalty
	}
	if HasTypeMismatch(row) {
		score -= typeMismatchPenalty
	}

	score -= worstPenalty(picklistSeverities(row, mismatches), picklistErrorPenalty, picklistWarningPenalty)
	score -= worstPenalty(charLimitSeverities(row, mismatches), charLimitErrorPenalty, charLimitWarningPenalty)
	score -= worstPenalty(missingSeverities(row, mismatches), missingErrorPenalty, missingWarningPenalty)

	if score < 0 {
		return 0
	}
	return score
}

func worstPenalty(severities []models.Severity, errorPenalty, warningPenalty int) int {
	penalty := 0
	for _, s := range severities {
		switch s {
		case models.SeverityError:
			return errorPenalty
		case models.SeverityWarning:
			penalty = warningPenalty
		}
	}
	return penalty
}

func picklistSeverities(row models.MappingRow, mismatches models.Mismatches) []models.Severity {
	var out []models.Severity
	for _, mm := range mismatches.Picklist {
		if mm.SourceField == row.SourceField && mm.TargetField == row.TargetField {
			out = append(out, mm.Severity)
		}
	}
	return out
}

func charLimitSeverities(row models.MappingRow, mismatches models.Mismatches) []models.Severity {
	var out []models.Severity
	for _, mm := range mismatches.CharacterLimit {
		if mm.SourceField == row.SourceField && mm.TargetField == row.TargetField {
			out = append(out, mm.Severity)
		}
	}
	return out
}

func missingSeverities(row models.MappingRow, mismatches models.Mismatches) []models.Severity {
	var out []models.Severity
	for _, mm := range mismatches.MissingField {
		if mm.SourceField == row.SourceField {
			out = append(out, mm.Severity)
		}
	}
	return out
}
