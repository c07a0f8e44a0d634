package autosign

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidValue = errors.New("invalid field value")

type ValueSource string

const (
	ValueSourceSigner ValueSource = "signer"
	ValueSourceAuto   ValueSource = "auto"
	ValueSourceStyle  ValueSource = "style"
)

// Value is what a signer put into one field. Checkbox fields use Checked,
// every other type uses Text.
type Value struct {
	FieldID string      `json:"fieldId"`
	Text    string      `json:"text,omitempty"`
	Checked bool        `json:"checked,omitempty"`
	Source  ValueSource `json:"source,omitempty"`
}

// NewValue converts a raw JSON value into a Value for f. Checkboxes take a
// bool, everything else a string.
func NewValue(f Field, raw any) (Value, error) {
	v := Value{FieldID: f.ID, Source: ValueSourceSigner}

	if f.Type == FieldTypeCheckbox {
		b, ok := raw.(bool)
		if !ok {
			return Value{}, fmt.Errorf("%w: checkbox %s expects a boolean", ErrInvalidValue, f.ID)
		}
		v.Checked = b
		return v, nil
	}

	s, ok := raw.(string)
	if !ok {
		return Value{}, fmt.Errorf("%w: %s field %s expects a string", ErrInvalidValue, f.Type, f.ID)
	}
	v.Text = s

	return v, nil
}

// Raw is the inverse of NewValue, used when rendering values back to clients.
func (v Value) Raw(t FieldType) any {
	if t == FieldTypeCheckbox {
		return v.Checked
	}
	return v.Text
}

// IsFilled reports whether v counts towards completion of a field of type t.
// An unchecked checkbox is not filled.
func (v Value) IsFilled(t FieldType) bool {
	if t == FieldTypeCheckbox {
		return v.Checked
	}
	return strings.TrimSpace(v.Text) != ""
}

// Values indexes values by field id.
type Values map[string]Value

func NewValues(values []Value) Values {
	out := make(Values, len(values))
	for _, v := range values {
		out[v.FieldID] = v
	}
	return out
}

// Merge returns a copy of vs overlaid with next; later values win.
func (vs Values) Merge(next []Value) Values {
	out := make(Values, len(vs)+len(next))
	for k, v := range vs {
		out[k] = v
	}
	for _, v := range next {
		out[v.FieldID] = v
	}
	return out
}

func (vs Values) Filled(f Field) bool {
	v, ok := vs[f.ID]
	return ok && v.IsFilled(f.Type)
}
