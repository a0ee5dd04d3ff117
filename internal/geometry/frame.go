package geometry

import "fmt"

// DefaultResistance is the fraction of an upward overscroll that is absorbed.
const DefaultResistance = 0.9

// Point is a position in points.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Size is a width and height in points.
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Rect returns a frame of this size anchored at the origin.
func (s Size) Rect() Frame {
	return Frame{Size: s}
}

// Empty reports whether either dimension is not positive.
func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Frame is a surface's layout rectangle.
type Frame struct {
	Origin Point `json:"origin" yaml:"origin"`
	Size   Size  `json:"size" yaml:"size"`
}

// Rect builds a frame from its components.
func Rect(x, y, width, height float64) Frame {
	return Frame{
		Origin: Point{X: x, Y: y},
		Size:   Size{Width: width, Height: height},
	}
}

// WithY returns a copy of f with its vertical origin replaced.
func (f Frame) WithY(y float64) Frame {
	f.Origin.Y = y
	return f
}

// MaxY returns the bottom edge of the frame.
func (f Frame) MaxY() float64 {
	return f.Origin.Y + f.Size.Height
}

// Contains reports whether p lies inside the frame.
// The bottom and right edges are exclusive.
func (f Frame) Contains(p Point) bool {
	return p.X >= f.Origin.X && p.X < f.Origin.X+f.Size.Width &&
		p.Y >= f.Origin.Y && p.Y < f.MaxY()
}

// Local converts a point from screen space into the frame's coordinate space.
func (f Frame) Local(p Point) Point {
	return Point{X: p.X - f.Origin.X, Y: p.Y - f.Origin.Y}
}

func (f Frame) String() string {
	return fmt.Sprintf("(%.1f,%.1f %.1fx%.1f)", f.Origin.X, f.Origin.Y, f.Size.Width, f.Size.Height)
}

// ComputeFrame returns base with its vertical origin set for offset y.
// Non-negative offsets are used as-is. Negative offsets are damped to
// y*(1-resistance) so dragging above the rest position feels heavy.
func ComputeFrame(base Frame, y, resistance float64) Frame {
	if y >= 0 {
		return base.WithY(y)
	}
	return base.WithY(y * (1 - resistance))
}

// Offscreen returns a full-size frame placed just below the bottom edge of a
// screen of the given size.
func Offscreen(screen Size) Frame {
	return screen.Rect().WithY(screen.Height)
}
