package geom

import (
	"fmt"
	"math"
)

type Vector2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func Vec(x, y float64) Vector2D {
	return Vector2D{X: x, Y: y}
}

func (v Vector2D) Add(o Vector2D) Vector2D {
	return Vector2D{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vector2D) Sub(o Vector2D) Vector2D {
	return Vector2D{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vector2D) Scale(f float64) Vector2D {
	return Vector2D{X: v.X * f, Y: v.Y * f}
}

func (v Vector2D) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

func (v Vector2D) String() string {
	return fmt.Sprintf("%g,%g", v.X, v.Y)
}

// Box is an axis aligned rectangle in absolute pixel coordinates.
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func NewBox(pos, size Vector2D) Box {
	return Box{X: pos.X, Y: pos.Y, W: size.X, H: size.Y}
}

func (b Box) Pos() Vector2D {
	return Vector2D{X: b.X, Y: b.Y}
}

func (b Box) Size() Vector2D {
	return Vector2D{X: b.W, Y: b.H}
}

func (b Box) Middle() Vector2D {
	return Vector2D{X: b.X + b.W/2, Y: b.Y + b.H/2}
}

func (b Box) Empty() bool {
	return b.W <= 0 || b.H <= 0
}

// Contains reports whether p lies inside b, edges inclusive on the top left.
func (b Box) Contains(p Vector2D) bool {
	return p.X >= b.X && p.X < b.X+b.W && p.Y >= b.Y && p.Y < b.Y+b.H
}

// Shrink insets every side of b by n pixels.
func (b Box) Shrink(n float64) Box {
	return Box{X: b.X + n, Y: b.Y + n, W: math.Max(b.W-2*n, 0), H: math.Max(b.H-2*n, 0)}
}

func (b Box) Translate(d Vector2D) Box {
	return Box{X: b.X + d.X, Y: b.Y + d.Y, W: b.W, H: b.H}
}

// OverlapsVertically reports whether b and o share any range on the Y axis.
func (b Box) OverlapsVertically(o Box) bool {
	return b.Y < o.Y+o.H && o.Y < b.Y+b.H
}

// OverlapsHorizontally reports whether b and o share any range on the X axis.
func (b Box) OverlapsHorizontally(o Box) bool {
	return b.X < o.X+o.W && o.X < b.X+b.W
}

// Round snaps the box to whole pixels.
func (b Box) Round() Box {
	return Box{X: math.Round(b.X), Y: math.Round(b.Y), W: math.Round(b.W), H: math.Round(b.H)}
}

func (b Box) String() string {
	return fmt.Sprintf("%gx%g@%g,%g", b.W, b.H, b.X, b.Y)
}
