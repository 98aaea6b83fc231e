package models

import (
	"slices"
	"strings"
)

// PIICategory is the semantic class a PII field name falls into. Empty means not PII.
type PIICategory string

const (
	PIICategoryNone        PIICategory = ""
	PIICategoryName        PIICategory = "name"
	PIICategoryEmail       PIICategory = "email"
	PIICategoryPhone       PIICategory = "phone"
	PIICategoryAddress     PIICategory = "address"
	PIICategoryNationalID  PIICategory = "national_id"
	PIICategoryBirthAge    PIICategory = "birth_age"
	PIICategoryFinancial   PIICategory = "financial"
	PIICategoryHealth      PIICategory = "health"
	PIICategoryDemographic PIICategory = "demographic"
)

// ValueMapEntry is a provider-suggested translation of one picklist value.
type ValueMapEntry struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// MappingRow is one source field candidate and the target it is mapped to.
//
// SourceField is the row's identity. Types are stored after the picklist
// disguise override has been applied. Confidence is not stored on the row;
// it is derived on every evaluation.
type MappingRow struct {
	SourceField   string      `json:"source_field" yaml:"source_field"`
	SourceType    FieldType   `json:"source_type" yaml:"source_type"`
	TargetField   string      `json:"target_field" yaml:"target_field"`
	TargetType    FieldType   `json:"target_type" yaml:"target_type"`
	IsPrimaryKey  bool        `json:"is_primary_key" yaml:"is_primary_key"`
	IncludeInSync bool        `json:"include_in_sync" yaml:"include_in_sync"`
	IsPII         bool        `json:"is_pii" yaml:"is_pii"`
	PIICategory   PIICategory `json:"pii_category,omitempty" yaml:"pii_category,omitempty"`
	MaskPII       bool        `json:"mask_pii" yaml:"mask_pii"`

	// Provider annotations, passed through for display.
	DefaultValue string          `json:"default_value,omitempty" yaml:"default_value,omitempty"`
	IsError      bool            `json:"is_error,omitempty" yaml:"is_error,omitempty"`
	IsWarning    bool            `json:"is_warning,omitempty" yaml:"is_warning,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	SuggestedFix string          `json:"suggested_fix,omitempty" yaml:"suggested_fix,omitempty"`
	ValueMap     []ValueMapEntry `json:"value_map,omitempty" yaml:"value_map,omitempty"`
}

// IsMapped reports whether the row has a non-blank target.
func (r MappingRow) IsMapped() bool {
	return strings.TrimSpace(r.TargetField) != ""
}

// HasBlankSource reports whether the row's source name is empty or whitespace.
func (r MappingRow) HasBlankSource() bool {
	return strings.TrimSpace(r.SourceField) == ""
}

// Clone returns a copy that shares no slices with r.
func (r MappingRow) Clone() MappingRow {
	r.ValueMap = slices.Clone(r.ValueMap)
	return r
}

func CloneRows(rows []MappingRow) []MappingRow {
	out := make([]MappingRow, len(rows))
	for i, row := range rows {
		out[i] = row.Clone()
	}
	return out
}

// FieldMappingEntry is one element of the metadata API's fieldMapping list.
type FieldMappingEntry struct {
	Source       string          `json:"source" yaml:"source"`
	SourceType   string          `json:"sourceType" yaml:"sourceType"`
	Target       string          `json:"target" yaml:"target"`
	TargetType   string          `json:"targetType" yaml:"targetType"`
	DefaultValue string          `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	IsError      bool            `json:"isError,omitempty" yaml:"isError,omitempty"`
	IsWarning    bool            `json:"isWarning,omitempty" yaml:"isWarning,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty" yaml:"errorMessage,omitempty"`
	SuggestedFix string          `json:"suggestedFix,omitempty" yaml:"suggestedFix,omitempty"`
	ValueMap     []ValueMapEntry `json:"valueMap,omitempty" yaml:"valueMap,omitempty"`
}

// FieldMappingResponse is the body of GET /field-mapping/{object}.
type FieldMappingResponse struct {
	FieldMapping []FieldMappingEntry `json:"fieldMapping"`
}
