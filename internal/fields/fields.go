// Package fields validates custom field values against their per-emulator
// definitions. Each field type parses into its own Value variant so the
// validation rules live in one place per type instead of ad hoc tag switches.
package fields

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/emutrack/emutrack-backend/internal/apperr"
	"github.com/emutrack/emutrack-backend/internal/models"
)

// Value is a parsed, type-checked custom field value.
type Value interface {
	// Validate checks the value against its definition's constraints.
	Validate(def *models.CustomFieldDefinition) error
	// JSON renders the canonical JSON encoding for storage.
	JSON() json.RawMessage
}

// SelectOption is one entry of a SELECT definition's option set.
type SelectOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type TextValue struct{ Text string }

type URLValue struct{ Raw string }

type SelectValue struct{ Choice string }

type RangeValue struct{ Number float64 }

type BooleanValue struct{ Flag bool }

// Parse decodes raw into the Value variant for the definition's type.
// A JSON null is treated as absent and returns nil without error; required
// checks happen in ValidateSet.
func Parse(def *models.CustomFieldDefinition, raw json.RawMessage) (Value, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	switch def.Type {
	case models.FieldTypeText, models.FieldTypeTextarea:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, apperr.Validationf("field %q expects a string value", def.Name)
		}
		return &TextValue{Text: s}, nil
	case models.FieldTypeURL:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, apperr.Validationf("field %q expects a URL string", def.Name)
		}
		return &URLValue{Raw: s}, nil
	case models.FieldTypeSelect:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, apperr.Validationf("field %q expects a string option", def.Name)
		}
		return &SelectValue{Choice: s}, nil
	case models.FieldTypeRange:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, apperr.Validationf("field %q expects a numeric value", def.Name)
		}
		return &RangeValue{Number: f}, nil
	case models.FieldTypeBoolean:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, apperr.Validationf("field %q expects a boolean value", def.Name)
		}
		return &BooleanValue{Flag: b}, nil
	default:
		return nil, apperr.Validationf("field %q has unknown type %q", def.Name, def.Type)
	}
}

func (v *TextValue) Validate(def *models.CustomFieldDefinition) error {
	if def.IsRequired && strings.TrimSpace(v.Text) == "" {
		return apperr.Validationf("field %q must not be empty", def.Name)
	}
	return nil
}

func (v *TextValue) JSON() json.RawMessage { return mustMarshal(v.Text) }

func (v *URLValue) Validate(def *models.CustomFieldDefinition) error {
	if strings.TrimSpace(v.Raw) == "" {
		if def.IsRequired {
			return apperr.Validationf("field %q must not be empty", def.Name)
		}
		return nil
	}
	u, err := url.Parse(v.Raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperr.Validationf("field %q must be a valid http(s) URL", def.Name)
	}
	return nil
}

func (v *URLValue) JSON() json.RawMessage { return mustMarshal(v.Raw) }

func (v *SelectValue) Validate(def *models.CustomFieldDefinition) error {
	opts, err := OptionsOf(def)
	if err != nil {
		return err
	}
	for _, o := range opts {
		if o.Value == v.Choice {
			return nil
		}
	}
	return apperr.Validationf("field %q: %q is not one of the allowed options", def.Name, v.Choice)
}

func (v *SelectValue) JSON() json.RawMessage { return mustMarshal(v.Choice) }

func (v *RangeValue) Validate(def *models.CustomFieldDefinition) error {
	if def.RangeMin != nil && v.Number < *def.RangeMin {
		return apperr.Validationf("field %q must be >= %v", def.Name, *def.RangeMin)
	}
	if def.RangeMax != nil && v.Number > *def.RangeMax {
		return apperr.Validationf("field %q must be <= %v", def.Name, *def.RangeMax)
	}
	return nil
}

func (v *RangeValue) JSON() json.RawMessage { return mustMarshal(v.Number) }

func (v *BooleanValue) Validate(_ *models.CustomFieldDefinition) error { return nil }

func (v *BooleanValue) JSON() json.RawMessage { return mustMarshal(v.Flag) }

// OptionsOf decodes a SELECT definition's option set.
func OptionsOf(def *models.CustomFieldDefinition) ([]SelectOption, error) {
	var opts []SelectOption
	if len(def.Options) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(def.Options, &opts); err != nil {
		return nil, apperr.Validationf("field %q has a malformed option set", def.Name)
	}
	return opts, nil
}

// ValidateSet parses and validates the submitted values against every
// definition for an emulator. Required definitions with no submitted value
// fail; values for unknown definitions fail. Returns storable values keyed
// by definition ID.
func ValidateSet(defs []models.CustomFieldDefinition, submitted map[string]json.RawMessage) (map[string]json.RawMessage, error) {
	byName := make(map[string]*models.CustomFieldDefinition, len(defs))
	for i := range defs {
		byName[defs[i].Name] = &defs[i]
	}

	for name := range submitted {
		if _, ok := byName[name]; !ok {
			return nil, apperr.Validationf("unknown custom field %q", name)
		}
	}

	out := make(map[string]json.RawMessage)
	for i := range defs {
		def := &defs[i]
		raw := submitted[def.Name]

		val, err := Parse(def, raw)
		if err != nil {
			return nil, err
		}
		if val == nil {
			if def.IsRequired {
				return nil, apperr.Validationf("required field %q is missing", def.Name)
			}
			continue
		}
		if err := val.Validate(def); err != nil {
			return nil, err
		}
		out[def.ID.String()] = val.JSON()
	}
	return out, nil
}

func mustMarshal(v interface{}) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}
