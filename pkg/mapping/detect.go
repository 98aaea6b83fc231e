package mapping

import (
	"slices"

	"github.com/starsandeep/sfsync/pkg/fields"
	"github.com/starsandeep/sfsync/pkg/models"
)

// PicklistAvailable reports whether picklist detection can run for an object pair.
func PicklistAvailable(source, target *fields.Object) bool {
	return source != nil && target != nil
}

// DetectPicklistMismatches compares the value sets of mapped Picklist pairs.
// It emits nothing unless metadata for both objects is available.
func DetectPicklistMismatches(rows []models.MappingRow, source, target *fields.Object, resolved *ResolvedSet, policy Policy) []models.PicklistMismatch {
	policy = policy.withDefaults()
	mismatches := []models.PicklistMismatch{}
	if !PicklistAvailable(source, target) {
		return mismatches
	}

	for _, row := range rows {
		if !row.IsMapped() || row.HasBlankSource() {
			continue
		}
		if row.SourceType != models.FieldTypePicklist || row.TargetType != models.FieldTypePicklist {
			continue
		}
		if resolved.Contains(PicklistKey(row.SourceField, row.TargetField)) {
			continue
		}

		sourceValues := source.PicklistValues(row.SourceField)
		targetValues := target.PicklistValues(row.TargetField)

		missing := difference(sourceValues, targetValues)
		if len(missing) == 0 {
			continue
		}

		severity := models.SeverityWarning
		if len(missing) > policy.PicklistErrorThreshold {
			severity = models.SeverityError
		}

		mismatches = append(mismatches, models.PicklistMismatch{
			SourceField:   row.SourceField,
			TargetField:   row.TargetField,
			MissingValues: missing,
			ExtraValues:   difference(targetValues, sourceValues),
			Severity:      severity,
		})
	}

	return mismatches
}

// difference returns the values of a absent from b, in a's order, without repeats.
func difference(a, b []string) []string {
	out := []string{}
	for _, v := range a {
		if !slices.Contains(b, v) && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

// EffectiveLength resolves a field's maximum length: the override table first,
// then metadata, then the policy default.
func EffectiveLength(fieldName string, metadata *fields.Object, policy Policy) int {
	policy = policy.withDefaults()
	if length, ok := policy.LengthOverrides[fieldName]; ok {
		return length
	}
	if length := metadata.Length(fieldName); length > 0 {
		return length
	}
	return policy.DefaultLength
}

// DetectCharacterLimitMismatches flags String pairs whose source can hold more
// characters than the target.
func DetectCharacterLimitMismatches(rows []models.MappingRow, source, target *fields.Object, resolved *ResolvedSet, policy Policy) []models.CharacterLimitMismatch {
	policy = policy.withDefaults()
	mismatches := []models.CharacterLimitMismatch{}

	for _, row := range rows {
		if !row.IsMapped() || row.HasBlankSource() {
			continue
		}
		if row.SourceType != models.FieldTypeString || row.TargetType != models.FieldTypeString {
			continue
		}
		if resolved.Contains(CharacterLimitKey(row.SourceField, row.TargetField)) {
			continue
		}

		sourceLength := EffectiveLength(row.SourceField, source, policy)
		targetLength := EffectiveLength(row.TargetField, target, policy)
		if sourceLength <= targetLength {
			continue
		}

		// sourceLength > 1.5 * targetLength, kept in integers
		severity := models.SeverityWarning
		if 2*sourceLength > 3*targetLength {
			severity = models.SeverityError
		}

		mismatches = append(mismatches, models.CharacterLimitMismatch{
			SourceField:  row.SourceField,
			TargetField:  row.TargetField,
			SourceLength: sourceLength,
			TargetLength: targetLength,
			Severity:     severity,
		})
	}

	return mismatches
}

// DetectMissingFields flags rows with a source but no target.
func DetectMissingFields(rows []models.MappingRow, resolved *ResolvedSet, policy Policy) []models.MissingFieldMismatch {
	policy = policy.withDefaults()
	mismatches := []models.MissingFieldMismatch{}

	for _, row := range rows {
		if row.HasBlankSource() || row.IsMapped() {
			continue
		}
		if resolved.Contains(MissingFieldKey(row.SourceField)) {
			continue
		}

		severity := models.SeverityWarning
		if slices.Contains(policy.ErrorMissingFields, row.SourceField) {
			severity = models.SeverityError
		}

		mismatches = append(mismatches, models.MissingFieldMismatch{
			SourceField: row.SourceField,
			Severity:    severity,
		})
	}

	return mismatches
}

// Detect runs all three detectors.
func Detect(rows []models.MappingRow, source, target *fields.Object, resolved *ResolvedSet, policy Policy) models.Mismatches {
	return models.Mismatches{
		Picklist:       DetectPicklistMismatches(rows, source, target, resolved, policy),
		CharacterLimit: DetectCharacterLimitMismatches(rows, source, target, resolved, policy),
		MissingField:   DetectMissingFields(rows, resolved, policy),
	}
}
