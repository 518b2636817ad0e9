package layout

import (
	"math"

	"github.com/ItsNotGoodName/x-tilewm/internal/geom"
	"github.com/ItsNotGoodName/x-tilewm/internal/window"
)

// AnchorPolicy picks the insertion anchor when a workspace has tiles but no
// focused tile. tiles is never empty.
type AnchorPolicy func(tiles []window.Handle) window.Handle

// LastTileAnchor anchors on the last tile in traversal order.
func LastTileAnchor(tiles []window.Handle) window.Handle {
	return tiles[len(tiles)-1]
}

// FirstTileAnchor anchors on the first tile in traversal order.
func FirstTileAnchor(tiles []window.Handle) window.Handle {
	return tiles[0]
}

type Candidate struct {
	Window window.Handle
	Box    geom.Box
}

// NeighborPolicy picks the window next to from in dir.
type NeighborPolicy func(from geom.Box, dir Direction, candidates []Candidate) (window.Handle, bool)

const edgeTolerance = 0.5

// NearestNeighbor picks the closest candidate that lies entirely past the
// edge of from in dir and overlaps it on the other axis. Ties go to the
// larger overlap, then to the earlier candidate.
func NearestNeighbor(from geom.Box, dir Direction, candidates []Candidate) (window.Handle, bool) {
	var (
		best        window.Handle
		found       bool
		bestGap     = math.Inf(1)
		bestOverlap float64
	)

	for _, c := range candidates {
		var gap, overlap float64
		switch dir {
		case DirectionRight:
			gap = c.Box.X - (from.X + from.W)
		case DirectionLeft:
			gap = from.X - (c.Box.X + c.Box.W)
		case DirectionDown:
			gap = c.Box.Y - (from.Y + from.H)
		case DirectionUp:
			gap = from.Y - (c.Box.Y + c.Box.H)
		default:
			return window.Handle{}, false
		}
		if gap < -edgeTolerance {
			continue
		}

		if dir.Horizontal() {
			overlap = math.Min(from.Y+from.H, c.Box.Y+c.Box.H) - math.Max(from.Y, c.Box.Y)
		} else {
			overlap = math.Min(from.X+from.W, c.Box.X+c.Box.W) - math.Max(from.X, c.Box.X)
		}
		if overlap <= 0 {
			continue
		}

		if gap < bestGap || (gap == bestGap && overlap > bestOverlap) {
			best, found, bestGap, bestOverlap = c.Window, true, gap, overlap
		}
	}

	return best, found
}

// dropDirection is the side of box nearest to p.
func dropDirection(box geom.Box, p geom.Vector2D) Direction {
	if box.Empty() {
		return DirectionDefault
	}
	dx := (p.X - box.X) / box.W
	dy := (p.Y - box.Y) / box.H

	dir, best := DirectionLeft, dx
	if d := 1 - dx; d < best {
		dir, best = DirectionRight, d
	}
	if dy < best {
		dir, best = DirectionUp, dy
	}
	if d := 1 - dy; d < best {
		dir = DirectionDown
	}
	return dir
}
