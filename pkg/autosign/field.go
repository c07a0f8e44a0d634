package autosign

import (
	"fmt"
	"strings"
)

type FieldType string

const (
	FieldTypeSignature FieldType = "signature"
	FieldTypeInitials  FieldType = "initials"
	FieldTypeDate      FieldType = "date"
	FieldTypeName      FieldType = "name"
	FieldTypeText      FieldType = "text"
	FieldTypeAddress   FieldType = "address"
	FieldTypeEmail     FieldType = "email"
	FieldTypeCheckbox  FieldType = "checkbox"
)

// Default footprint of a freshly placed field, in page percent (letter/A4 portrait).
var defaultSizes = map[FieldType]Size{
	FieldTypeSignature: {Width: 25, Height: 6},
	FieldTypeInitials:  {Width: 8, Height: 5},
	FieldTypeDate:      {Width: 15, Height: 3},
	FieldTypeName:      {Width: 22, Height: 3},
	FieldTypeText:      {Width: 22, Height: 3},
	FieldTypeAddress:   {Width: 35, Height: 5},
	FieldTypeEmail:     {Width: 25, Height: 3},
	FieldTypeCheckbox:  {Width: 3, Height: 2.5},
}

func FieldTypes() []FieldType {
	return []FieldType{
		FieldTypeSignature,
		FieldTypeInitials,
		FieldTypeDate,
		FieldTypeName,
		FieldTypeText,
		FieldTypeAddress,
		FieldTypeEmail,
		FieldTypeCheckbox,
	}
}

func (t FieldType) Valid() bool {
	_, ok := defaultSizes[t]
	return ok
}

func (t FieldType) DefaultSize() Size {
	return defaultSizes[t]
}

// Signature and initials only get a value once the signer adopts a style.
func (t FieldType) NeedsSignatureStyle() bool {
	return t == FieldTypeSignature || t == FieldTypeInitials
}

type Field struct {
	ID   string    `json:"id"`
	Type FieldType `json:"type" binding:"fieldType"`
	Page uint      `json:"page"`
	Rect
	Required bool `json:"required"`
	// nil means any signer of the document may fill it
	AssignedTo *string `json:"assignedTo"`
	Label      string  `json:"label"`
	FontSize   float64 `json:"fontSize"`
}

// NormalizeAssignee trims the assignee and turns blank values into nil, so
// "unassigned" has exactly one representation.
func NormalizeAssignee(assignee *string) *string {
	if assignee == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*assignee)
	if trimmed == "" {
		return nil
	}

	return &trimmed
}

func (f Field) IsAssigned() bool {
	return NormalizeAssignee(f.AssignedTo) != nil
}

type FieldError struct {
	Index   int    `json:"index"`
	FieldID string `json:"fieldId,omitempty"`
	Message string `json:"message"`
}

type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	msgs := make([]string, 0, len(fe))
	for _, e := range fe {
		msgs = append(msgs, fmt.Sprintf("field[%d]: %s", e.Index, e.Message))
	}
	return strings.Join(msgs, "; ")
}

func (f Field) Validate(pageCount uint) error {
	if !f.Type.Valid() {
		return fmt.Errorf("unknown field type %q", f.Type)
	}

	if f.Page < 1 || f.Page > pageCount {
		return fmt.Errorf("page must be between 1 and %d, got %d", pageCount, f.Page)
	}

	if err := f.Rect.Validate(); err != nil {
		return err
	}

	if f.FontSize < 0 {
		return fmt.Errorf("fontSize must not be negative, got %v", f.FontSize)
	}

	return nil
}

// ValidateLayout checks every field of a layout and returns all violations as FieldErrors.
func ValidateLayout(fields []Field, pageCount uint) error {
	var errs FieldErrors
	seen := make(map[string]int, len(fields))

	for i, f := range fields {
		if err := f.Validate(pageCount); err != nil {
			errs = append(errs, FieldError{Index: i, FieldID: f.ID, Message: err.Error()})
			continue
		}

		if f.ID == "" {
			continue
		}
		if first, ok := seen[f.ID]; ok {
			errs = append(errs, FieldError{Index: i, FieldID: f.ID, Message: fmt.Sprintf("duplicate id, already used by field[%d]", first)})
			continue
		}
		seen[f.ID] = i
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
