package autosign

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

var (
	ErrFieldNotFound    = errors.New("field not found")
	ErrUnknownFieldType = errors.New("unknown field type")
	ErrPageOutOfRange   = errors.New("page out of range")
)

// Layout is the placement editor state for one document. Every method
// returns a new Layout and leaves the receiver untouched, and every field in
// a Layout satisfies the page bounds invariant, so the state can be saved at
// any point.
type Layout struct {
	pageCount uint
	fields    []Field
}

type FieldProps struct {
	Required   *bool    `json:"required"`
	AssignedTo *string  `json:"assignedTo"`
	Unassign   bool     `json:"unassign"`
	Label      *string  `json:"label"`
	FontSize   *float64 `json:"fontSize"`
}

// NewLayout seeds the editor with stored fields. Fields without an id get a
// fresh one and all geometry is clamped.
func NewLayout(pageCount uint, fields []Field) Layout {
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		f.Rect = f.Rect.Clamp()
		f.AssignedTo = NormalizeAssignee(f.AssignedTo)
		out = append(out, f)
	}

	return Layout{pageCount: pageCount, fields: out}
}

func (l Layout) PageCount() uint {
	return l.pageCount
}

func (l Layout) Fields() []Field {
	return slices.Clone(l.fields)
}

func (l Layout) Len() int {
	return len(l.fields)
}

func (l Layout) Get(id string) (Field, bool) {
	i := l.indexOf(id)
	if i < 0 {
		return Field{}, false
	}
	return l.fields[i], true
}

func (l Layout) indexOf(id string) int {
	return slices.IndexFunc(l.fields, func(f Field) bool { return f.ID == id })
}

func (l Layout) with(fields []Field) Layout {
	return Layout{pageCount: l.pageCount, fields: fields}
}

// Add places a field of the given type with its default size, centered near at.
func (l Layout) Add(t FieldType, page uint, at Position) (Layout, Field, error) {
	if !t.Valid() {
		return l, Field{}, fmt.Errorf("%w: %q", ErrUnknownFieldType, t)
	}
	if page < 1 || page > l.pageCount {
		return l, Field{}, fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, page, l.pageCount)
	}

	f := Field{
		ID:   uuid.NewString(),
		Type: t,
		Page: page,
		Rect: CenteredAt(at, t.DefaultSize()),
		// signatures are required unless the agent says otherwise
		Required: t.NeedsSignatureStyle(),
	}

	fields := append(slices.Clone(l.fields), f)
	return l.with(fields), f, nil
}

func (l Layout) mutate(id string, fn func(f *Field)) (Layout, error) {
	i := l.indexOf(id)
	if i < 0 {
		return l, fmt.Errorf("%w: %s", ErrFieldNotFound, id)
	}

	fields := slices.Clone(l.fields)
	fn(&fields[i])
	fields[i].Rect = fields[i].Rect.Clamp()

	return l.with(fields), nil
}

// Move sets the top-left corner of a field.
func (l Layout) Move(id string, to Position) (Layout, error) {
	return l.mutate(id, func(f *Field) {
		f.Position = to
	})
}

// MoveToPage moves a field onto another page, keeping its position.
func (l Layout) MoveToPage(id string, page uint) (Layout, error) {
	if page < 1 || page > l.pageCount {
		return l, fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, page, l.pageCount)
	}
	return l.mutate(id, func(f *Field) {
		f.Page = page
	})
}

// Resize keeps the top-left corner fixed. A size that would overflow the
// page is cut at the page edge.
func (l Layout) Resize(id string, size Size) (Layout, error) {
	return l.mutate(id, func(f *Field) {
		w := clamp(size.Width, MinFieldSize, PageExtent-f.X)
		h := clamp(size.Height, MinFieldSize, PageExtent-f.Y)
		f.Size = Size{Width: w, Height: h}
	})
}

func (l Layout) Update(id string, props FieldProps) (Layout, error) {
	return l.mutate(id, func(f *Field) {
		if props.Required != nil {
			f.Required = *props.Required
		}
		if props.Unassign {
			f.AssignedTo = nil
		} else if props.AssignedTo != nil {
			f.AssignedTo = NormalizeAssignee(props.AssignedTo)
		}
		if props.Label != nil {
			f.Label = *props.Label
		}
		if props.FontSize != nil && *props.FontSize >= 0 {
			f.FontSize = *props.FontSize
		}
	})
}

// Remove drops the field locally; nothing reaches the server until the layout is saved.
func (l Layout) Remove(id string) (Layout, error) {
	i := l.indexOf(id)
	if i < 0 {
		return l, fmt.Errorf("%w: %s", ErrFieldNotFound, id)
	}

	return l.with(slices.Delete(slices.Clone(l.fields), i, i+1)), nil
}
