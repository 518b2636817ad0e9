// Package anim moves windows towards their layout geometry along bezier
// curves.
package anim

import (
	"time"

	"github.com/ItsNotGoodName/x-tilewm/internal/bezier"
	"github.com/ItsNotGoodName/x-tilewm/internal/geom"
	"github.com/ItsNotGoodName/x-tilewm/internal/window"
)

const (
	CurveDefault = "default"
	CurveLinear  = "linear"
)

// Curves maps curve names to baked curves.
type Curves map[string]*bezier.Curve

// NewCurves returns the built-in curves.
func NewCurves() Curves {
	return Curves{
		CurveDefault: bezier.New(geom.Vec(0, 0.75), geom.Vec(0.15, 1)),
		CurveLinear:  bezier.New(geom.Vec(0, 0), geom.Vec(1, 1)),
	}
}

func (c Curves) Add(name string, points ...geom.Vector2D) {
	c[name] = bezier.New(points...)
}

// Get returns the named curve, or the default curve when it is unknown.
func (c Curves) Get(name string) *bezier.Curve {
	if curve, ok := c[name]; ok {
		return curve
	}
	return c[CurveDefault]
}

// ApplyFunc shows a window at an intermediate geometry.
type ApplyFunc func(h window.Handle, box geom.Box)

type animation struct {
	from    geom.Box
	to      geom.Box
	current geom.Box
	start   time.Time
}

// Animator tracks running geometry animations. It is driven by the host's
// frame ticker and is not safe for concurrent use.
type Animator struct {
	curve      *bezier.Curve
	duration   time.Duration
	apply      ApplyFunc
	animations map[window.Handle]*animation
}

func New(curve *bezier.Curve, duration time.Duration, apply ApplyFunc) *Animator {
	return &Animator{
		curve:      curve,
		duration:   duration,
		apply:      apply,
		animations: make(map[window.Handle]*animation),
	}
}

// SetCurve changes the curve and duration of future animations. A zero
// duration disables animation.
func (a *Animator) SetCurve(curve *bezier.Curve, duration time.Duration) {
	a.curve = curve
	a.duration = duration
}

// Animate starts moving h from its current geometry to target. A running
// animation of h continues from where it is.
func (a *Animator) Animate(h window.Handle, from, target geom.Box, now time.Time) {
	if anim, ok := a.animations[h]; ok {
		from = anim.current
	}
	if a.curve == nil || a.duration <= 0 || from.Empty() || from == target {
		delete(a.animations, h)
		a.apply(h, target)
		return
	}

	a.animations[h] = &animation{from: from, to: target, current: from, start: now}
}

// Tick advances every animation to now. It reports whether any animation is
// still running.
func (a *Animator) Tick(now time.Time) bool {
	for h, anim := range a.animations {
		progress := float64(now.Sub(anim.start)) / float64(a.duration)
		if progress >= 1 {
			delete(a.animations, h)
			a.apply(h, anim.to)
			continue
		}

		anim.current = lerp(anim.from, anim.to, a.curve.YForPoint(max(progress, 0)))
		a.apply(h, anim.current)
	}
	return len(a.animations) > 0
}

// Cancel drops the animation of h without applying its target.
func (a *Animator) Cancel(h window.Handle) {
	delete(a.animations, h)
}

func (a *Animator) Running() int {
	return len(a.animations)
}

// Current returns the geometry h is shown at while animating.
func (a *Animator) Current(h window.Handle) (geom.Box, bool) {
	anim, ok := a.animations[h]
	if !ok {
		return geom.Box{}, false
	}
	return anim.current, true
}

func lerp(from, to geom.Box, t float64) geom.Box {
	return geom.Box{
		X: from.X + (to.X-from.X)*t,
		Y: from.Y + (to.Y-from.Y)*t,
		W: from.W + (to.W-from.W)*t,
		H: from.H + (to.H-from.H)*t,
	}
}
