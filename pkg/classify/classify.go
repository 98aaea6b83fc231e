// Package classify infers field attributes from Salesforce API names.
package classify

import (
	"regexp"

	"github.com/starsandeep/sfsync/pkg/models"
)

var (
	primaryKeyPattern       = regexp.MustCompile(`(?i)^id$`)
	picklistDisguisePattern = regexp.MustCompile(`(?i)^.*Status.*__c$`)
)

// IsPrimaryKey reports whether a field should default to being the primary key.
func IsPrimaryKey(fieldName string) bool {
	return primaryKeyPattern.MatchString(fieldName)
}

// EffectiveType applies the picklist disguise override: a String field whose
// name looks like a custom status field is treated as a Picklist.
func EffectiveType(fieldName string, fieldType models.FieldType) models.FieldType {
	fieldType = models.ParseFieldType(string(fieldType))
	if fieldType == models.FieldTypeString && picklistDisguisePattern.MatchString(fieldName) {
		return models.FieldTypePicklist
	}
	return fieldType
}
