package mapping

import (
	"testing"

	"github.com/starsandeep/sfsync/pkg/errors"
	"github.com/starsandeep/sfsync/pkg/fields"
	"github.com/starsandeep/sfsync/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func TestApplyRowUpdate(t *testing.T) {
	target := object("Contact",
		picklistField("Lead_Status__c", "Open"),
		fields.Field{Name: "Account_Status__c", Type: models.FieldTypeString},
		fields.Field{Name: "Notes__c", Type: models.FieldTypeTextarea},
	)
	rows := []models.MappingRow{
		row("Status", "Picklist", "Status", "Picklist"),
		row("Description", "String", "Description", "String"),
	}

	t.Run("unknown row", func(t *testing.T) {
		_, err := ApplyRowUpdate(rows, "Missing__c", RowUpdate{TargetField: ptr("X")}, target)
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("retarget takes the type from metadata", func(t *testing.T) {
		out, err := ApplyRowUpdate(rows, "Description", RowUpdate{TargetField: ptr(" Notes__c ")}, target)
		require.NoError(t, err)
		assert.Equal(t, "Notes__c", out[1].TargetField)
		assert.Equal(t, models.FieldTypeTextarea, out[1].TargetType)

		// source rows are untouched
		assert.Equal(t, "Description", rows[1].TargetField)
	})

	t.Run("retarget applies the disguised picklist override", func(t *testing.T) {
		out, err := ApplyRowUpdate(rows, "Status", RowUpdate{TargetField: ptr("Account_Status__c")}, target)
		require.NoError(t, err)
		assert.Equal(t, models.FieldTypePicklist, out[0].TargetType)
	})

	t.Run("retarget to an unknown field keeps the type", func(t *testing.T) {
		out, err := ApplyRowUpdate(rows, "Status", RowUpdate{TargetField: ptr("Custom__c")}, target)
		require.NoError(t, err)
		assert.Equal(t, "Custom__c", out[0].TargetField)
		assert.Equal(t, models.FieldTypePicklist, out[0].TargetType)
	})

	t.Run("clearing the target clears its type", func(t *testing.T) {
		out, err := ApplyRowUpdate(rows, "Status", RowUpdate{TargetField: ptr("")}, target)
		require.NoError(t, err)
		assert.False(t, out[0].IsMapped())
		assert.Empty(t, out[0].TargetType)
	})

	t.Run("retarget after clearing to an unknown field has no type penalty", func(t *testing.T) {
		cleared, err := ApplyRowUpdate(rows, "Description", RowUpdate{TargetField: ptr("")}, target)
		require.NoError(t, err)

		for _, meta := range []*fields.Object{target, nil} {
			out, err := ApplyRowUpdate(cleared, "Description", RowUpdate{TargetField: ptr("Summary__c")}, meta)
			require.NoError(t, err)
			assert.Equal(t, "Summary__c", out[1].TargetField)
			assert.Empty(t, out[1].TargetType)
			assert.False(t, HasTypeMismatch(out[1]))
			assert.Equal(t, 100, Score(out[1], models.Mismatches{}))
		}
	})

	t.Run("flags", func(t *testing.T) {
		out, err := ApplyRowUpdate(rows, "Description", RowUpdate{
			IncludeInSync: ptr(false),
			IsPrimaryKey:  ptr(true),
			MaskPII:       ptr(true),
		}, nil)
		require.NoError(t, err)
		assert.False(t, out[1].IncludeInSync)
		assert.True(t, out[1].IsPrimaryKey)
		assert.True(t, out[1].MaskPII)
		assert.Equal(t, "Description", out[1].TargetField)
	})
}
