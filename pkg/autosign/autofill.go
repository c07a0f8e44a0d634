package autosign

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

const DateLayout = "2006-01-02"

// SignatureStyle is the rendering a signer adopts for signature and initials
// fields: a typed text drawn with a named script font.
type SignatureStyle struct {
	Font string `json:"font" form:"font" binding:"required,strNotEmpty,max=100"`
	Text string `json:"text" form:"text" binding:"required,strNotEmpty,max=200"`
}

// Reference is the value stored in a field filled by this style. Renderers
// resolve it instead of raw ink.
func (s SignatureStyle) Reference(t FieldType) string {
	text := strings.TrimSpace(s.Text)
	if t == FieldTypeInitials {
		text = Initials(text)
	}
	return fmt.Sprintf("style:%s:%s", strings.TrimSpace(s.Font), text)
}

// Initials takes the first letter of every word, upper-cased. "jane q. doe" -> "JQD".
func Initials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			if unicode.IsLetter(r) {
				b.WriteRune(unicode.ToUpper(r))
				break
			}
		}
	}
	return b.String()
}

// AutoFill computes default values for visible fields that have no value
// yet: today's date for date fields, and the signer's name and email. It is
// meant to run once per session.
func AutoFill(visible []Field, values Values, signer Signer, now time.Time) []Value {
	var out []Value

	for _, f := range visible {
		if _, ok := values[f.ID]; ok {
			continue
		}

		var text string
		switch f.Type {
		case FieldTypeDate:
			text = now.Format(DateLayout)
		case FieldTypeName:
			text = strings.TrimSpace(signer.Name)
		case FieldTypeEmail:
			text = strings.TrimSpace(signer.Email)
		}

		if text == "" {
			continue
		}
		out = append(out, Value{FieldID: f.ID, Text: text, Source: ValueSourceAuto})
	}

	return out
}

// StyleFill fills every visible, still empty signature and initials field with the adopted style.
func StyleFill(visible []Field, values Values, style SignatureStyle) []Value {
	var out []Value

	for _, f := range visible {
		if !f.Type.NeedsSignatureStyle() || values.Filled(f) {
			continue
		}
		out = append(out, Value{FieldID: f.ID, Text: style.Reference(f.Type), Source: ValueSourceStyle})
	}

	return out
}
