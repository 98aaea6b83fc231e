// Package fields describes the object metadata returned by the metadata API.
//
// # Overview
//
// An Object lists the fields of one Salesforce object as seen from one side of
// a sync (source or target). Each Field carries:
//   - its API name and label
//   - its data type
//   - an optional maximum length
//   - the picklist values it accepts, for picklist fields
//
// # Lookup
//
// Salesforce API names are case-insensitive, so GetField tries an exact match
// first and then a case-insensitive one.
//
// # Example
//
//	Object{
//	  ObjectName: "Account",
//	  Fields: Fields{
//	    {Name: "Name", Type: models.FieldTypeString, Length: 80},
//	    {Name: "Status__c", Type: models.FieldTypePicklist, PicklistValues: []PicklistValue{{Value: "Open"}}},
//	  },
//	}
package fields

import (
	"strings"

	"github.com/Gobusters/ectolinq"
	"github.com/starsandeep/sfsync/pkg/errors"
	"github.com/starsandeep/sfsync/pkg/models"
)

// Side is which end of the sync an object's metadata describes.
type Side string

const (
	SideSource Side = "source"
	SideTarget Side = "target"
)

type PicklistValue struct {
	Label    string `json:"label" yaml:"label"`
	Value    string `json:"value" yaml:"value" validate:"required"`
	IsActive bool   `json:"isActive" yaml:"isActive"`
}

// Field is one field of an object.
type Field struct {
	Name           string           `json:"name" yaml:"name" validate:"required"`
	Type           models.FieldType `json:"type" yaml:"type"`
	Label          string           `json:"label" yaml:"label"`
	Length         int              `json:"length,omitempty" yaml:"length,omitempty"` // zero when the API does not report one
	PicklistValues []PicklistValue  `json:"picklistValues,omitempty" yaml:"picklistValues,omitempty"`
}

// Values returns the picklist value strings in declaration order.
func (f *Field) Values() []string {
	return ectolinq.Map(f.PicklistValues, func(v PicklistValue) string {
		return v.Value
	})
}

type Fields []Field

// GetField finds a field by API name.
func (f Fields) GetField(name string) (*Field, error) {
	for i := range f {
		if f[i].Name == name {
			return &f[i], nil
		}
	}
	for i := range f {
		if strings.EqualFold(f[i].Name, name) {
			return &f[i], nil
		}
	}

	return nil, errors.NewValidationError("field not found").AddField(name)
}

// Names returns the API names of all fields.
func (f Fields) Names() []string {
	return ectolinq.Map(f, func(field Field) string {
		return field.Name
	})
}

// Object is the body of GET /objects/{object}/metadata.
type Object struct {
	ObjectName string `json:"objectName" yaml:"objectName" validate:"required"`
	Fields     Fields `json:"fields" yaml:"fields" validate:"dive"`
}

// GetField is nil-safe so callers can pass unavailable metadata straight through.
func (o *Object) GetField(name string) (*Field, error) {
	if o == nil {
		return nil, errors.NewValidationError("metadata not available").AddField(name)
	}

	field, err := o.Fields.GetField(name)
	if err != nil {
		return nil, errors.WrapValidationError(err).AddObject(o.ObjectName)
	}
	return field, nil
}

// PicklistValues returns the value strings of a field, or nil if the field is unknown.
func (o *Object) PicklistValues(name string) []string {
	field, err := o.GetField(name)
	if err != nil {
		return nil
	}
	return field.Values()
}

// Length returns the field's reported maximum length, or zero if unknown.
func (o *Object) Length(name string) int {
	field, err := o.GetField(name)
	if err != nil {
		return 0
	}
	return field.Length
}

// Normalize canonicalises every field type in place.
func (o *Object) Normalize() {
	if o == nil {
		return
	}
	for i := range o.Fields {
		o.Fields[i].Type = models.ParseFieldType(string(o.Fields[i].Type))
	}
}
