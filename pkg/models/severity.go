package models

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// MismatchKind names the detector that produced a mismatch.
type MismatchKind string

const (
	MismatchKindPicklist       MismatchKind = "picklist"
	MismatchKindCharacterLimit MismatchKind = "character_limit"
	MismatchKindMissingField   MismatchKind = "missing_field"
)

func (k MismatchKind) Valid() bool {
	switch k {
	case MismatchKindPicklist, MismatchKindCharacterLimit, MismatchKindMissingField:
		return true
	default:
		return false
	}
}

// ConfidenceTier buckets a confidence score for display. It never gates progression.
type ConfidenceTier string

const (
	ConfidenceTierHigh   ConfidenceTier = "high"
	ConfidenceTierMedium ConfidenceTier = "medium"
	ConfidenceTierLow    ConfidenceTier = "low"
)

func TierForScore(score int) ConfidenceTier {
	switch {
	case score >= 90:
		return ConfidenceTierHigh
	case score >= 75:
		return ConfidenceTierMedium
	default:
		return ConfidenceTierLow
	}
}
