package mapping

import (
	"github.com/starsandeep/sfsync/pkg/fields"
	"github.com/starsandeep/sfsync/pkg/models"
)

func entry(source, sourceType, target, targetType string) models.FieldMappingEntry {
	return models.FieldMappingEntry{Source: source, SourceType: sourceType, Target: target, TargetType: targetType}
}

func row(source, sourceType, target, targetType string) models.MappingRow {
	return RowFromEntry(entry(source, sourceType, target, targetType))
}

func picklistField(name string, values ...string) fields.Field {
	field := fields.Field{Name: name, Type: models.FieldTypePicklist}
	for _, v := range values {
		field.PicklistValues = append(field.PicklistValues, fields.PicklistValue{Label: v, Value: v, IsActive: true})
	}
	return field
}

func object(name string, f ...fields.Field) *fields.Object {
	return &fields.Object{ObjectName: name, Fields: f}
}
