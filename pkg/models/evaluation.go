package models

// GateReason identifies one failed progression condition.
type GateReason string

const (
	GateReasonDuplicateTarget   GateReason = "duplicate_target"
	GateReasonNoMappings        GateReason = "no_mappings"
	GateReasonEmptySource       GateReason = "empty_source"
	GateReasonInvalidSourceName GateReason = "invalid_source_name"
	GateReasonTooManyMappings   GateReason = "too_many_mappings"
	GateReasonSyncBlockingError GateReason = "sync_blocking_error"
)

type GateFailure struct {
	Reason  GateReason `json:"reason"`
	Message string     `json:"message"`
	Fields  []string   `json:"fields,omitempty"`
}

// RowEvaluation is the derived state of a single row.
type RowEvaluation struct {
	SourceField       string         `json:"source_field"`
	TargetField       string         `json:"target_field"`
	ConfidenceScore   int            `json:"confidence_score"`
	ConfidenceTier    ConfidenceTier `json:"confidence_tier"`
	TypeMismatch      bool           `json:"type_mismatch"`
	DuplicateTarget   bool           `json:"duplicate_target"`
	InvalidSourceName bool           `json:"invalid_source_name"`
	EmptySource       bool           `json:"empty_source"`
	IsErrorRow        bool           `json:"is_error_row"`
	BlocksSync        bool           `json:"blocks_sync"`
}

// Issue is one entry of the aggregate issues panel.
type Issue struct {
	Kind        MismatchKind `json:"kind"`
	Severity    Severity     `json:"severity"`
	SourceField string       `json:"source_field"`
	TargetField string       `json:"target_field,omitempty"`
	Message     string       `json:"message"`
}

type IssueSummary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
}

// Evaluation is the result of running cross-validation, scoring and the gate
// over a row set.
type Evaluation struct {
	Rows                  []RowEvaluation `json:"rows"`
	Mismatches            Mismatches      `json:"mismatches"`
	Issues                []Issue         `json:"issues"`
	Summary               IssueSummary    `json:"summary"`
	DuplicateTargetFields []string        `json:"duplicate_target_fields"`
	MappedCount           int             `json:"mapped_count"`
	PicklistAvailable     bool            `json:"picklist_available"`
	CanProceed            bool            `json:"can_proceed"`
	GateFailures          []GateFailure   `json:"gate_failures"`
}

// Row returns the evaluation of the first row with the given source field.
func (e Evaluation) Row(sourceField string) (RowEvaluation, bool) {
	for _, row := range e.Rows {
		if row.SourceField == sourceField {
			return row, true
		}
	}
	return RowEvaluation{}, false
}

func (e Evaluation) HasFailure(reason GateReason) bool {
	for _, f := range e.GateFailures {
		if f.Reason == reason {
			return true
		}
	}
	return false
}
