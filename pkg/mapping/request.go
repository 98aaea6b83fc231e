package mapping

import (
	"encoding/json"

	"github.com/starsandeep/sfsync/pkg/fields"
	"github.com/starsandeep/sfsync/pkg/models"
	"gopkg.in/yaml.v3"
)

// EvaluationRequest is a self-contained row set to evaluate, as posted to the
// stateless evaluate endpoint or read from a file by the CLI.
//
// Decoded rows that omit include_in_sync are included, and rows that omit
// mask_pii are masked when their source is PII, the same defaults a fetched
// row gets.
type EvaluationRequest struct {
	Rows           []models.MappingRow `json:"rows" yaml:"rows" validate:"required"`
	SourceMetadata *fields.Object      `json:"source_metadata,omitempty" yaml:"source_metadata,omitempty"`
	TargetMetadata *fields.Object      `json:"target_metadata,omitempty" yaml:"target_metadata,omitempty"`
	Resolved       []ResolutionKey     `json:"resolved,omitempty" yaml:"resolved,omitempty"`

	flags []rowFlags
}

// rowFlags records which optional row flags were present in the decoded input.
type rowFlags struct {
	IncludeInSync *bool `json:"include_in_sync" yaml:"include_in_sync"`
	MaskPII       *bool `json:"mask_pii" yaml:"mask_pii"`
}

type requestFlags struct {
	Rows []rowFlags `json:"rows" yaml:"rows"`
}

type evaluationRequest EvaluationRequest

func (r *EvaluationRequest) UnmarshalJSON(data []byte) error {
	var req evaluationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return err
	}
	var flags requestFlags
	if err := json.Unmarshal(data, &flags); err != nil {
		return err
	}
	*r = EvaluationRequest(req)
	r.flags = flags.Rows
	return nil
}

func (r *EvaluationRequest) UnmarshalYAML(value *yaml.Node) error {
	var req evaluationRequest
	if err := value.Decode(&req); err != nil {
		return err
	}
	var flags requestFlags
	if err := value.Decode(&flags); err != nil {
		return err
	}
	*r = EvaluationRequest(req)
	r.flags = flags.Rows
	return nil
}

// Input normalizes the request's rows and metadata for Evaluate. The request
// itself is not modified.
func (r EvaluationRequest) Input() Input {
	return Input{
		Rows:           r.rowsWithDefaults(),
		SourceMetadata: normalizedCopy(r.SourceMetadata),
		TargetMetadata: normalizedCopy(r.TargetMetadata),
		Resolved:       NewResolvedSet(r.Resolved...),
	}
}

func (r EvaluationRequest) rowsWithDefaults() []models.MappingRow {
	rows := Normalize(r.Rows)
	if r.flags == nil {
		return rows
	}
	for i := range rows {
		var flags rowFlags
		if i < len(r.flags) {
			flags = r.flags[i]
		}
		if flags.IncludeInSync == nil {
			rows[i].IncludeInSync = true
		}
		if flags.MaskPII == nil {
			rows[i].MaskPII = rows[i].IsPII
		}
	}
	return rows
}

func normalizedCopy(o *fields.Object) *fields.Object {
	if o == nil {
		return nil
	}
	c := &fields.Object{ObjectName: o.ObjectName, Fields: append(fields.Fields(nil), o.Fields...)}
	c.Normalize()
	return c
}
