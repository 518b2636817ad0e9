// Package bezier evaluates the easing curves used by geometry animations.
package bezier

import (
	"sort"

	"github.com/ItsNotGoodName/x-tilewm/internal/geom"
)

// BakedPoints is the number of uniform samples in a curve's lookup table.
const BakedPoints = 255

// Curve is a parametric Bezier curve anchored at (0,0) and (1,1).
//
// Setup must be called once before use. After that a Curve is read-only and
// may be shared between goroutines.
type Curve struct {
	points []geom.Vector2D
	baked  [BakedPoints]geom.Vector2D
}

// New returns a curve set up from the interior control points.
func New(points ...geom.Vector2D) *Curve {
	var c Curve
	c.Setup(points)
	return &c
}

// Setup stores the interior control points, excluding (0,0) and (1,1), and
// bakes the lookup table. Two interior points give the usual cubic easing
// curve.
//
// YForPoint assumes x is monotonic in t. For control points that break that
// assumption the result is only as precise as the closest baked sample.
func (c *Curve) Setup(points []geom.Vector2D) {
	c.points = make([]geom.Vector2D, 0, len(points)+2)
	c.points = append(c.points, geom.Vec(0, 0))
	c.points = append(c.points, points...)
	c.points = append(c.points, geom.Vec(1, 1))

	for i := range c.baked {
		t := float64(i) / float64(BakedPoints-1)
		c.baked[i] = geom.Vec(c.XForT(t), c.YForT(t))
	}
}

// Points returns the full control point set including both endpoints.
func (c *Curve) Points() []geom.Vector2D {
	return append([]geom.Vector2D(nil), c.points...)
}

// Baked returns a copy of the lookup table.
func (c *Curve) Baked() [BakedPoints]geom.Vector2D {
	return c.baked
}

func (c *Curve) XForT(t float64) float64 {
	return c.eval(t, func(p geom.Vector2D) float64 { return p.X })
}

func (c *Curve) YForT(t float64) float64 {
	return c.eval(t, func(p geom.Vector2D) float64 { return p.Y })
}

// eval computes the Bernstein polynomial of the control points at t.
func (c *Curve) eval(t float64, axis func(geom.Vector2D) float64) float64 {
	n := len(c.points) - 1
	if n < 1 {
		return t
	}

	u := 1 - t
	var sum float64
	for i, p := range c.points {
		sum += binomial(n, i) * pow(u, n-i) * pow(t, i) * axis(p)
	}
	return sum
}

// YForPoint returns y for the given x by interpolating between the two baked
// samples whose x values bracket it. x is clamped to [0,1].
func (c *Curve) YForPoint(x float64) float64 {
	if x <= c.baked[0].X {
		return c.baked[0].Y
	}
	if x >= c.baked[BakedPoints-1].X {
		return c.baked[BakedPoints-1].Y
	}

	upper := sort.Search(BakedPoints, func(i int) bool { return c.baked[i].X >= x })
	if upper == 0 {
		return c.baked[0].Y
	}
	if upper >= BakedPoints {
		return c.baked[BakedPoints-1].Y
	}

	lo, hi := c.baked[upper-1], c.baked[upper]
	dx := hi.X - lo.X
	if dx <= 0 {
		return lo.Y
	}

	return lo.Y + (hi.Y-lo.Y)*(x-lo.X)/dx
}

func binomial(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	r := 1.0
	for i := 1; i <= k; i++ {
		r = r * float64(n-k+i) / float64(i)
	}
	return r
}

func pow(v float64, n int) float64 {
	r := 1.0
	for i := 0; i < n; i++ {
		r *= v
	}
	return r
}
