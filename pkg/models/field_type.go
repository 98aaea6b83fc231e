package models

import (
	"strings"

	"github.com/Gobusters/ectolinq"
)

// FieldType is the Salesforce data type of a field as reported by the metadata API.
type FieldType string

const (
	FieldTypeString    FieldType = "String"
	FieldTypePicklist  FieldType = "Picklist"
	FieldTypeTextarea  FieldType = "Textarea"
	FieldTypeNumber    FieldType = "Number"
	FieldTypeCurrency  FieldType = "Currency"
	FieldTypeBoolean   FieldType = "Boolean"
	FieldTypeDate      FieldType = "Date"
	FieldTypeDateTime  FieldType = "DateTime"
	FieldTypeID        FieldType = "Id"
	FieldTypeReference FieldType = "Reference"
	FieldTypeEmail     FieldType = "Email"
	FieldTypePhone     FieldType = "Phone"
)

var knownFieldTypes = []FieldType{
	FieldTypeString,
	FieldTypePicklist,
	FieldTypeTextarea,
	FieldTypeNumber,
	FieldTypeCurrency,
	FieldTypeBoolean,
	FieldTypeDate,
	FieldTypeDateTime,
	FieldTypeID,
	FieldTypeReference,
	FieldTypeEmail,
	FieldTypePhone,
}

// ParseFieldType canonicalises a type name case-insensitively ("string", "STRING" -> String).
// Names outside the known set are kept as given, trimmed.
func ParseFieldType(raw string) FieldType {
	raw = strings.TrimSpace(raw)
	known := ectolinq.Find(knownFieldTypes, func(t FieldType) bool {
		return strings.EqualFold(string(t), raw)
	})
	if known != "" {
		return known
	}
	return FieldType(raw)
}

func (t FieldType) Is(other FieldType) bool {
	return strings.EqualFold(string(t), string(other))
}

func (t FieldType) String() string {
	return string(t)
}
