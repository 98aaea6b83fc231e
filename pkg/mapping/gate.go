package mapping

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Gobusters/ectolinq"
	"github.com/starsandeep/sfsync/pkg/models"
)

var sourceNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidSourceName reports whether a source field name is a legal API identifier.
func ValidSourceName(name string) bool {
	return sourceNamePattern.MatchString(name)
}

// DuplicateTargets returns every non-empty target used by two or more rows,
// in order of first use. Sync inclusion does not matter.
func DuplicateTargets(rows []models.MappingRow) []string {
	counts := make(map[string]int, len(rows))
	order := []string{}
	for _, row := range rows {
		if !row.IsMapped() {
			continue
		}
		target := strings.TrimSpace(row.TargetField)
		if counts[target] == 0 {
			order = append(order, target)
		}
		counts[target]++
	}

	return ectolinq.Filter(order, func(target string) bool {
		return counts[target] > 1
	})
}

// MappedCount is the number of rows with a non-empty target.
func MappedCount(rows []models.MappingRow) int {
	return len(ectolinq.Filter(rows, func(row models.MappingRow) bool {
		return row.IsMapped()
	}))
}

// rowState is the structural status of one row as seen by the gate.
type rowState struct {
	duplicateTarget bool
	emptySource     bool
	invalidSource   bool
	errorRow        bool
	blocksSync      bool
}

func evaluateRowState(row models.MappingRow, duplicates []string, mismatches models.Mismatches) rowState {
	state := rowState{
		duplicateTarget: row.IsMapped() && ectolinq.Contains(duplicates, strings.TrimSpace(row.TargetField)),
		emptySource:     row.HasBlankSource(),
	}
	state.invalidSource = !state.emptySource && !ValidSourceName(row.SourceField)

	// Missing-field severity does not count here.
	state.errorRow = state.duplicateTarget ||
		state.emptySource ||
		state.invalidSource ||
		row.IsError ||
		ectolinq.Contains(picklistSeverities(row, mismatches), models.SeverityError) ||
		ectolinq.Contains(charLimitSeverities(row, mismatches), models.SeverityError)
	state.blocksSync = state.errorRow && row.IncludeInSync

	return state
}

// EvaluateGate decides whether the user may advance past the mapping step and
// reports every failing condition separately.
func EvaluateGate(rows []models.MappingRow, mismatches models.Mismatches, policy Policy) (bool, []models.GateFailure) {
	policy = policy.withDefaults()
	failures := []models.GateFailure{}

	duplicates := DuplicateTargets(rows)
	if len(duplicates) > 0 {
		failures = append(failures, models.GateFailure{
			Reason:  models.GateReasonDuplicateTarget,
			Message: fmt.Sprintf("Target fields are mapped more than once: %s", strings.Join(duplicates, ", ")),
			Fields:  duplicates,
		})
	}

	mapped := MappedCount(rows)
	if mapped == 0 {
		failures = append(failures, models.GateFailure{
			Reason:  models.GateReasonNoMappings,
			Message: "Map at least one field to continue",
		})
	}

	var emptySources, invalidSources, blocking []string
	for i, row := range rows {
		state := evaluateRowState(row, duplicates, mismatches)
		if state.emptySource {
			emptySources = append(emptySources, fmt.Sprintf("row %d", i+1))
		}
		if state.invalidSource {
			invalidSources = append(invalidSources, row.SourceField)
		}
		if state.blocksSync {
			blocking = append(blocking, ectolinq.Ternary(state.emptySource, fmt.Sprintf("row %d", i+1), row.SourceField))
		}
	}

	if len(emptySources) > 0 {
		failures = append(failures, models.GateFailure{
			Reason:  models.GateReasonEmptySource,
			Message: "Every row needs a source field",
			Fields:  emptySources,
		})
	}
	if len(invalidSources) > 0 {
		failures = append(failures, models.GateFailure{
			Reason:  models.GateReasonInvalidSourceName,
			Message: fmt.Sprintf("Source field names must match %s", sourceNamePattern.String()),
			Fields:  invalidSources,
		})
	}
	if mapped > policy.MaxMappings {
		failures = append(failures, models.GateFailure{
			Reason:  models.GateReasonTooManyMappings,
			Message: fmt.Sprintf("At most %d fields can be mapped, %d are mapped", policy.MaxMappings, mapped),
		})
	}
	if len(blocking) > 0 {
		failures = append(failures, models.GateFailure{
			Reason:  models.GateReasonSyncBlockingError,
			Message: "Resolve errors on fields included in the sync, or exclude them",
			Fields:  blocking,
		})
	}

	return len(failures) == 0, failures
}
