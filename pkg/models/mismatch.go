package models

type PicklistMismatch struct {
	SourceField   string   `json:"source_field"`
	TargetField   string   `json:"target_field"`
	MissingValues []string `json:"missing_values"`
	ExtraValues   []string `json:"extra_values"`
	Severity      Severity `json:"severity"`
}

type CharacterLimitMismatch struct {
	SourceField  string   `json:"source_field"`
	TargetField  string   `json:"target_field"`
	SourceLength int      `json:"source_length"`
	TargetLength int      `json:"target_length"`
	Severity     Severity `json:"severity"`
}

type MissingFieldMismatch struct {
	SourceField string   `json:"source_field"`
	Severity    Severity `json:"severity"`
}

// Mismatches holds the output of one cross-validation pass. It is recomputed
// on every change and never persisted.
type Mismatches struct {
	Picklist       []PicklistMismatch       `json:"picklist"`
	CharacterLimit []CharacterLimitMismatch `json:"character_limit"`
	MissingField   []MissingFieldMismatch   `json:"missing_field"`
}

func (m Mismatches) Len() int {
	return len(m.Picklist) + len(m.CharacterLimit) + len(m.MissingField)
}

// FindPicklist returns the first picklist mismatch for the exact source/target pair.
func (m Mismatches) FindPicklist(source, target string) (PicklistMismatch, bool) {
	for _, mm := range m.Picklist {
		if mm.SourceField == source && mm.TargetField == target {
			return mm, true
		}
	}
	return PicklistMismatch{}, false
}

// FindCharacterLimit returns the first character-limit mismatch for the exact source/target pair.
func (m Mismatches) FindCharacterLimit(source, target string) (CharacterLimitMismatch, bool) {
	for _, mm := range m.CharacterLimit {
		if mm.SourceField == source && mm.TargetField == target {
			return mm, true
		}
	}
	return CharacterLimitMismatch{}, false
}

// FindMissingField matches by source only.
func (m Mismatches) FindMissingField(source string) (MissingFieldMismatch, bool) {
	for _, mm := range m.MissingField {
		if mm.SourceField == source {
			return mm, true
		}
	}
	return MissingFieldMismatch{}, false
}
