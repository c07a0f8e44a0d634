package autosign

import (
	"errors"
	"fmt"
	"math"
)

// All geometry is expressed in percent of the page width/height, so the
// same field lands on the same spot no matter the render resolution.
const (
	PageExtent   = 100.0
	MinFieldSize = 1.0

	epsilon = 1e-9
)

var (
	ErrInvalidPageBounds = errors.New("page bounds must have a positive width and height")
)

type Position struct {
	X float64 `json:"x" form:"x"`
	Y float64 `json:"y" form:"y"`
}

type Size struct {
	Width  float64 `json:"width" form:"width"`
	Height float64 `json:"height" form:"height"`
}

type Rect struct {
	Position
	Size
}

// Screen-space rectangle of a rendered page, in whatever unit the pointer uses (usually css px).
type PageBounds struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	if !isFinite(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Validate reports the first geometry violation of r, or nil.
func (r Rect) Validate() error {
	names := []string{"x", "y", "width", "height"}
	for i, v := range []float64{r.X, r.Y, r.Width, r.Height} {
		if !isFinite(v) {
			return fmt.Errorf("%s must be a finite number", names[i])
		}
	}

	switch {
	case r.X < 0 || r.X > PageExtent:
		return fmt.Errorf("x must be between 0 and %v, got %v", PageExtent, r.X)
	case r.Y < 0 || r.Y > PageExtent:
		return fmt.Errorf("y must be between 0 and %v, got %v", PageExtent, r.Y)
	case r.Width <= 0 || r.Width > PageExtent:
		return fmt.Errorf("width must be greater than 0 and at most %v, got %v", PageExtent, r.Width)
	case r.Height <= 0 || r.Height > PageExtent:
		return fmt.Errorf("height must be greater than 0 and at most %v, got %v", PageExtent, r.Height)
	case r.X+r.Width > PageExtent+epsilon:
		return fmt.Errorf("x + width must not exceed %v, got %v", PageExtent, r.X+r.Width)
	case r.Y+r.Height > PageExtent+epsilon:
		return fmt.Errorf("y + height must not exceed %v, got %v", PageExtent, r.Y+r.Height)
	}

	return nil
}

// Clamp returns r shrunk and shifted so it always fits on the page.
// Size is clamped first, then the origin, so a field pushed past the right
// edge slides back instead of losing width.
func (r Rect) Clamp() Rect {
	w := clamp(r.Width, MinFieldSize, PageExtent)
	h := clamp(r.Height, MinFieldSize, PageExtent)

	return Rect{
		Position: Position{
			X: clamp(r.X, 0, PageExtent-w),
			Y: clamp(r.Y, 0, PageExtent-h),
		},
		Size: Size{Width: w, Height: h},
	}
}

// CenteredAt builds a rect of size s whose center is as close to p as the page allows.
func CenteredAt(p Position, s Size) Rect {
	return Rect{
		Position: Position{X: p.X - s.Width/2, Y: p.Y - s.Height/2},
		Size:     s,
	}.Clamp()
}

// ScreenToPageFraction converts a pointer location into page percent
// coordinates. Points outside the page are pinned to its edge.
func ScreenToPageFraction(pointer Position, page PageBounds) (Position, error) {
	if !(page.Width > 0) || !(page.Height > 0) || !isFinite(page.Width) || !isFinite(page.Height) {
		return Position{}, ErrInvalidPageBounds
	}

	return Position{
		X: clamp((pointer.X-page.Left)/page.Width*PageExtent, 0, PageExtent),
		Y: clamp((pointer.Y-page.Top)/page.Height*PageExtent, 0, PageExtent),
	}, nil
}
