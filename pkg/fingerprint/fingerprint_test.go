package fingerprint

import (
	"testing"

	"github.com/starsandeep/sfsync/pkg/fields"
	"github.com/starsandeep/sfsync/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIsOrderIndependent(t *testing.T) {
	a, err := Generate(map[string]any{"b": 1, "a": []any{"x", map[string]any{"d": true, "c": nil}}})
	require.NoError(t, err)
	b, err := Generate(map[string]any{"a": []any{"x", map[string]any{"c": nil, "d": true}}, "b": 1})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestGenerateExclusions(t *testing.T) {
	a, err := Generate(map[string]any{"name": "Status", "meta": map[string]any{"at": 1}}, "meta")
	require.NoError(t, err)
	b, err := Generate(map[string]any{"name": "Status", "meta": map[string]any{"at": 2}}, "meta")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestLoad(t *testing.T) {
	entries := []models.FieldMappingEntry{{Source: "Status__c", SourceType: "String", Target: "Status__c", TargetType: "Picklist"}}
	source := &fields.Object{ObjectName: "Account", Fields: fields.Fields{{
		Name: "Status__c", Type: models.FieldTypePicklist, Label: "Status",
		PicklistValues: []fields.PicklistValue{{Label: "Open", Value: "Open", IsActive: true}},
	}}}

	base, err := Load(entries, source, nil)
	require.NoError(t, err)

	t.Run("stable", func(t *testing.T) {
		again, err := Load(entries, source, nil)
		require.NoError(t, err)
		assert.False(t, HasChanged(base, again))
	})

	t.Run("field labels are ignored", func(t *testing.T) {
		relabelled := &fields.Object{ObjectName: "Account", Fields: fields.Fields{source.Fields[0]}}
		relabelled.Fields[0].Label = "Account Status"

		fp, err := Load(entries, relabelled, nil)
		require.NoError(t, err)
		assert.Equal(t, base, fp)
	})

	t.Run("picklist values matter", func(t *testing.T) {
		changed := &fields.Object{ObjectName: "Account", Fields: fields.Fields{source.Fields[0]}}
		changed.Fields[0].PicklistValues = append([]fields.PicklistValue{}, source.Fields[0].PicklistValues...)
		changed.Fields[0].PicklistValues = append(changed.Fields[0].PicklistValues, fields.PicklistValue{Value: "Closed"})

		fp, err := Load(entries, changed, nil)
		require.NoError(t, err)
		assert.True(t, HasChanged(base, fp))
	})

	t.Run("metadata appearing is a change", func(t *testing.T) {
		fp, err := Load(entries, source, &fields.Object{ObjectName: "Account"})
		require.NoError(t, err)
		assert.True(t, HasChanged(base, fp))
	})

	t.Run("first load is not a change", func(t *testing.T) {
		assert.False(t, HasChanged("", base))
	})
}
