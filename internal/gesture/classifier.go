package gesture

import "math"

// Resolution is the terminal animation chosen for a finished pan.
type Resolution int

const (
	// ResolveToTop animates the surface back to offset 0.
	ResolveToTop Resolution = iota
	// ResolveDismiss animates the surface off screen and removes it.
	ResolveDismiss
	// ResolveToOffset springs the surface to its lowered rest offset.
	ResolveToOffset
)

// String returns the string representation of the resolution.
func (r Resolution) String() string {
	switch r {
	case ResolveToTop:
		return "top"
	case ResolveDismiss:
		return "dismiss"
	case ResolveToOffset:
		return "offset"
	default:
		return "unknown"
	}
}

// Outcome is the classification of a finished pan.
type Outcome struct {
	Resolution Resolution
	// VelocityY is the terminal vertical velocity, used to seed spring animations.
	VelocityY float64
}

// Candidate describes the surface a gesture wants to start on.
type Candidate struct {
	// Top reports whether the surface is the frontmost member of its stack.
	Top     bool
	Type    WindowType
	OffsetY float64
	// Allow is the caller predicate, consulted for pans only. Nil allows.
	Allow func() bool
}

// Classifier holds the thresholds used to gate and resolve gestures.
// The zero value rejects every pan because MaxBeginY is zero.
type Classifier struct {
	// VelocityThreshold is the minimum |velocity| in points/sec for a pan to
	// begin, and the speed above which a released pan is treated as a fling.
	VelocityThreshold float64
	// MaxBeginY is the lowest point, in surface coordinates, a pan may start from.
	MaxBeginY float64
}

// ShouldBegin reports whether gesture k may start on c. It has no side effects
// beyond calling c.Allow for pans.
func (cl Classifier) ShouldBegin(c Candidate, k Kind) bool {
	if !c.Top {
		return false
	}

	switch g := k.(type) {
	case Pan:
		if c.Allow != nil && !c.Allow() {
			return false
		}
		return g.Start.Y <= cl.MaxBeginY && math.Abs(g.VelocityY) >= cl.VelocityThreshold
	case Tap:
		return c.Type == Offsetable && c.OffsetY != 0
	default:
		return false
	}
}

// ClassifyPanEnd decides how a released pan resolves.
//
// A fling (|velocityY| at or above the threshold) resolves by direction: down
// dismisses or offsets according to t, up returns to the top. A slow release
// resolves by position against half of screenExtent.
func (cl Classifier) ClassifyPanEnd(t WindowType, offsetY, velocityY, screenExtent float64) Outcome {
	down := offsetY >= 0.5*screenExtent
	if math.Abs(velocityY) >= cl.VelocityThreshold {
		down = velocityY > 0
	}

	if !down {
		return Outcome{Resolution: ResolveToTop, VelocityY: velocityY}
	}
	if t == Offsetable {
		return Outcome{Resolution: ResolveToOffset, VelocityY: velocityY}
	}
	return Outcome{Resolution: ResolveDismiss, VelocityY: velocityY}
}
