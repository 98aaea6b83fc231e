package mapping

// Policy holds the tunable constants of validation, scoring and gating.
//
// DefaultPolicy reproduces the behaviour the wizard shipped with, including
// two literal special cases: a two-entry length override table and a single
// field name whose missing target is an error.
type Policy struct {
	// MaxMappings is the ceiling on rows with a non-empty target.
	MaxMappings int
	// DefaultLength applies when neither the override table nor metadata gives a length.
	DefaultLength int
	// LengthOverrides maps a field API name to its maximum length and wins over metadata.
	LengthOverrides map[string]int
	// ErrorMissingFields lists the source fields whose unmapped state is an error.
	ErrorMissingFields []string
	// PicklistErrorThreshold is the number of missing values above which a picklist mismatch is an error.
	PicklistErrorThreshold int
}

// DefaultPolicy returns the shipped limits: 50 mappings, 255 characters by
// default with Description and Name overridden, Last_Viewed_Date required and
// picklist mismatches raised to errors above two missing values.
func DefaultPolicy() Policy {
	return Policy{
		MaxMappings:   50,
		DefaultLength: 255,
		LengthOverrides: map[string]int{
			"Description": 32000,
			"Name":        80,
		},
		ErrorMissingFields:     []string{"Last_Viewed_Date"},
		PicklistErrorThreshold: 2,
	}
}

// withDefaults fills zero values from DefaultPolicy so a partially populated
// Policy behaves sensibly.
func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.MaxMappings <= 0 {
		p.MaxMappings = d.MaxMappings
	}
	if p.DefaultLength <= 0 {
		p.DefaultLength = d.DefaultLength
	}
	if p.LengthOverrides == nil {
		p.LengthOverrides = d.LengthOverrides
	}
	if p.ErrorMissingFields == nil {
		p.ErrorMissingFields = d.ErrorMissingFields
	}
	if p.PicklistErrorThreshold <= 0 {
		p.PicklistErrorThreshold = d.PicklistErrorThreshold
	}
	return p
}
