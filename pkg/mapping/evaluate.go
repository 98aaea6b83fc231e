package mapping

import (
	"fmt"
	"strings"

	"github.com/starsandeep/sfsync/pkg/fields"
	"github.com/starsandeep/sfsync/pkg/models"
)

// Input is everything one evaluation pass looks at.
type Input struct {
	Rows           []models.MappingRow
	SourceMetadata *fields.Object
	TargetMetadata *fields.Object
	Resolved       *ResolvedSet
}

// Evaluator runs cross-validation, confidence scoring and the gate under a policy.
type Evaluator struct {
	policy Policy
}

func NewEvaluator(policy Policy) *Evaluator {
	return &Evaluator{policy: policy.withDefaults()}
}

func (e *Evaluator) Policy() Policy {
	return e.policy
}

// Evaluate is a pure function of its input: it never mutates rows or the resolved set.
func (e *Evaluator) Evaluate(in Input) models.Evaluation {
	mismatches := Detect(in.Rows, in.SourceMetadata, in.TargetMetadata, in.Resolved, e.policy)
	duplicates := DuplicateTargets(in.Rows)
	canProceed, failures := EvaluateGate(in.Rows, mismatches, e.policy)

	rows := make([]models.RowEvaluation, 0, len(in.Rows))
	for _, row := range in.Rows {
		state := evaluateRowState(row, duplicates, mismatches)
		score := Score(row, mismatches)
		rows = append(rows, models.RowEvaluation{
			SourceField:       row.SourceField,
			TargetField:       row.TargetField,
			ConfidenceScore:   score,
			ConfidenceTier:    models.TierForScore(score),
			TypeMismatch:      HasTypeMismatch(row),
			DuplicateTarget:   state.duplicateTarget,
			InvalidSourceName: state.invalidSource,
			EmptySource:       state.emptySource,
			IsErrorRow:        state.errorRow,
			BlocksSync:        state.blocksSync,
		})
	}

	issues := Issues(mismatches)
	summary := models.IssueSummary{}
	for _, issue := range issues {
		if issue.Severity == models.SeverityError {
			summary.Errors++
		} else {
			summary.Warnings++
		}
	}

	if duplicates == nil {
		duplicates = []string{}
	}

	return models.Evaluation{
		Rows:                  rows,
		Mismatches:            mismatches,
		Issues:                issues,
		Summary:               summary,
		DuplicateTargetFields: duplicates,
		MappedCount:           MappedCount(in.Rows),
		PicklistAvailable:     PicklistAvailable(in.SourceMetadata, in.TargetMetadata),
		CanProceed:            canProceed,
		GateFailures:          failures,
	}
}

// Issues flattens a mismatch set into issues-panel entries.
func Issues(mismatches models.Mismatches) []models.Issue {
	issues := make([]models.Issue, 0, mismatches.Len())

	for _, mm := range mismatches.Picklist {
		msg := fmt.Sprintf("%d picklist value(s) of %s are missing on %s: %s",
			len(mm.MissingValues), mm.SourceField, mm.TargetField, strings.Join(mm.MissingValues, ", "))
		issues = append(issues, models.Issue{
			Kind:        models.MismatchKindPicklist,
			Severity:    mm.Severity,
			SourceField: mm.SourceField,
			TargetField: mm.TargetField,
			Message:     msg,
		})
	}

	for _, mm := range mismatches.CharacterLimit {
		issues = append(issues, models.Issue{
			Kind:        models.MismatchKindCharacterLimit,
			Severity:    mm.Severity,
			SourceField: mm.SourceField,
			TargetField: mm.TargetField,
			Message: fmt.Sprintf("%s holds up to %d characters but %s only holds %d",
				mm.SourceField, mm.SourceLength, mm.TargetField, mm.TargetLength),
		})
	}

	for _, mm := range mismatches.MissingField {
		issues = append(issues, models.Issue{
			Kind:        models.MismatchKindMissingField,
			Severity:    mm.Severity,
			SourceField: mm.SourceField,
			Message:     fmt.Sprintf("%s is not mapped to a target field", mm.SourceField),
		})
	}

	return issues
}

// HasMismatch reports whether the evaluation currently carries the mismatch a
// resolution key refers to.
func HasMismatch(mismatches models.Mismatches, key ResolutionKey) bool {
	switch key.Kind {
	case models.MismatchKindPicklist:
		_, ok := mismatches.FindPicklist(key.SourceField, key.TargetField)
		return ok
	case models.MismatchKindCharacterLimit:
		_, ok := mismatches.FindCharacterLimit(key.SourceField, key.TargetField)
		return ok
	case models.MismatchKindMissingField:
		_, ok := mismatches.FindMissingField(key.SourceField)
		return ok
	default:
		return false
	}
}
