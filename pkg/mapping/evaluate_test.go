package mapping

import (
	"testing"

	"github.com/starsandeep/sfsync/pkg/fields"
	"github.com/starsandeep/sfsync/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluator_Evaluate(t *testing.T) {
	evaluator := NewEvaluator(DefaultPolicy())

	source := object("Account",
		picklistField("Status__c", "New", "Open", "Closed"),
		picklistField("Rating", "Hot", "Warm", "Cold", "Frozen"),
		fields.Field{Name: "Name", Type: models.FieldTypeString, Length: 80},
	)
	target := object("Account",
		picklistField("Status__c", "New", "Closed"),
		picklistField("Rating", "Hot"),
		fields.Field{Name: "Name", Type: models.FieldTypeString, Length: 80},
	)

	t.Run("disguised picklist scores medium and does not block", func(t *testing.T) {
		rows := []models.MappingRow{row("Status__c", "String", "Status__c", "Picklist")}

		eval := evaluator.Evaluate(Input{Rows: rows, SourceMetadata: source, TargetMetadata: target})
		assert.True(t, eval.CanProceed)
		assert.True(t, eval.PicklistAvailable)

		status, ok := eval.Row("Status__c")
		require.True(t, ok)
		assert.Equal(t, 85, status.ConfidenceScore)
		assert.Equal(t, models.ConfidenceTierMedium, status.ConfidenceTier)
		assert.False(t, status.TypeMismatch)
		assert.False(t, status.IsErrorRow)

		require.Len(t, eval.Issues, 1)
		assert.Equal(t, models.IssueSummary{Warnings: 1}, eval.Summary)
	})

	// An error-severity missing field does not make its row an error row, so
	// it never stops progression on its own.
	t.Run("error missing field scores zero without blocking", func(t *testing.T) {
		rows := []models.MappingRow{
			row("Last_Viewed_Date", "DateTime", "", ""),
			row("Name", "String", "Name", "String"),
		}

		eval := evaluator.Evaluate(Input{Rows: rows, SourceMetadata: source, TargetMetadata: target})
		assert.True(t, eval.CanProceed)
		assert.Empty(t, eval.GateFailures)

		lastViewed, ok := eval.Row("Last_Viewed_Date")
		require.True(t, ok)
		assert.Equal(t, 0, lastViewed.ConfidenceScore)
		assert.Equal(t, models.ConfidenceTierLow, lastViewed.ConfidenceTier)
		assert.False(t, lastViewed.BlocksSync)
		assert.Equal(t, models.IssueSummary{Errors: 1}, eval.Summary)
	})

	t.Run("resolution unblocks and restores the score", func(t *testing.T) {
		rows := []models.MappingRow{row("Rating", "Picklist", "Rating", "Picklist")}

		before := evaluator.Evaluate(Input{Rows: rows, SourceMetadata: source, TargetMetadata: target})
		assert.False(t, before.CanProceed)
		assert.True(t, before.HasFailure(models.GateReasonSyncBlockingError))
		rating, _ := before.Row("Rating")
		assert.Equal(t, 70, rating.ConfidenceScore)
		assert.True(t, rating.BlocksSync)

		key := PicklistKey("Rating", "Rating")
		assert.True(t, HasMismatch(before.Mismatches, key))

		resolved := NewResolvedSet(key)
		after := evaluator.Evaluate(Input{Rows: rows, SourceMetadata: source, TargetMetadata: target, Resolved: resolved})
		assert.True(t, after.CanProceed)
		assert.Empty(t, after.Mismatches.Picklist)
		assert.False(t, HasMismatch(after.Mismatches, key))
		rating, _ = after.Row("Rating")
		assert.Equal(t, 100, rating.ConfidenceScore)
	})

	t.Run("excluding an error row unblocks without clearing its mismatch", func(t *testing.T) {
		rows := []models.MappingRow{
			row("Rating", "Picklist", "Rating", "Picklist"),
			row("Name", "String", "Name", "String"),
		}
		rows[0].IncludeInSync = false

		eval := evaluator.Evaluate(Input{Rows: rows, SourceMetadata: source, TargetMetadata: target})
		assert.True(t, eval.CanProceed)
		require.Len(t, eval.Mismatches.Picklist, 1)

		rating, _ := eval.Row("Rating")
		assert.True(t, rating.IsErrorRow)
		assert.False(t, rating.BlocksSync)
	})

	t.Run("unavailable metadata disables picklist checks only", func(t *testing.T) {
		rows := []models.MappingRow{
			row("Rating", "Picklist", "Rating", "Picklist"),
			row("Description", "String", "Summary__c", "String"),
		}

		eval := evaluator.Evaluate(Input{Rows: rows})
		assert.False(t, eval.PicklistAvailable)
		assert.Empty(t, eval.Mismatches.Picklist)
		require.Len(t, eval.Mismatches.CharacterLimit, 1)
		assert.Equal(t, models.SeverityError, eval.Mismatches.CharacterLimit[0].Severity)
	})

	t.Run("input is not mutated", func(t *testing.T) {
		rows := []models.MappingRow{
			row("Rating", "Picklist", "Rating", "Picklist"),
			row("Email", "Email", "Email", "Email"),
			row("Alt_Email__c", "Email", "Email", "Email"),
		}
		snapshot := models.CloneRows(rows)
		resolved := NewResolvedSet(MissingFieldKey("Fax"))

		eval := evaluator.Evaluate(Input{Rows: rows, SourceMetadata: source, TargetMetadata: target, Resolved: resolved})
		assert.Equal(t, snapshot, rows)
		assert.Equal(t, 1, resolved.Len())
		assert.Equal(t, []string{"Email"}, eval.DuplicateTargetFields)
		assert.Equal(t, 3, eval.MappedCount)
	})

	t.Run("empty row set", func(t *testing.T) {
		eval := evaluator.Evaluate(Input{})
		assert.False(t, eval.CanProceed)
		assert.NotNil(t, eval.DuplicateTargetFields)
		assert.Empty(t, eval.Rows)
		assert.Equal(t, []models.GateReason{models.GateReasonNoMappings}, reasons(eval.GateFailures))
	})
}

func TestIssues(t *testing.T) {
	issues := Issues(models.Mismatches{
		Picklist: []models.PicklistMismatch{
			{SourceField: "Status__c", TargetField: "Status__c", MissingValues: []string{"Open"}, Severity: models.SeverityWarning},
		},
		CharacterLimit: []models.CharacterLimitMismatch{
			{SourceField: "Notes__c", TargetField: "Short__c", SourceLength: 300, TargetLength: 250, Severity: models.SeverityWarning},
		},
		MissingField: []models.MissingFieldMismatch{
			{SourceField: "Last_Viewed_Date", Severity: models.SeverityError},
		},
	})

	require.Len(t, issues, 3)
	assert.Equal(t, "1 picklist value(s) of Status__c are missing on Status__c: Open", issues[0].Message)
	assert.Equal(t, "Notes__c holds up to 300 characters but Short__c only holds 250", issues[1].Message)
	assert.Equal(t, models.MismatchKindMissingField, issues[2].Kind)
	assert.Empty(t, issues[2].TargetField)
}
