package dotlzm

import "math"

// ---------- Edge curve sampling ----------
//
// Explicit edges are cubic beziers in (x, time) space: the owning object's
// start/end are the anchors, the two resolved control points sit between.
// Adaptive de Casteljau subdivision, with time normalized to seconds so the
// flatness tolerance weighs both axes comparably.

const edgeTolSq = 0.02 * 0.02

type edgeVec struct {
	x, t float64 // t in seconds
}

func toEdgeVec(p EdgePoint) edgeVec   { return edgeVec{x: p.X, t: p.TimeMs / 1000.0} }
func fromEdgeVec(v edgeVec) EdgePoint { return EdgePoint{X: v.x, TimeMs: v.t * 1000.0} }

// straightEdgePoints is the degenerate polyline: just the two anchors.
func straightEdgePoints(start, end EdgePoint) []EdgePoint {
	return []EdgePoint{start, end}
}

// cubicEdgePoints samples the cubic through the anchors and the two control
// points. The first and last samples are exactly the anchors.
func cubicEdgePoints(start, c0, c1, end EdgePoint) []EdgePoint {
	cp := []edgeVec{toEdgeVec(start), toEdgeVec(c0), toEdgeVec(c1), toEdgeVec(end)}
	flat := approximateEdgeBezier(cp)
	flat = dedupeEdgePoints(flat)
	out := make([]EdgePoint, len(flat))
	for i, v := range flat {
		out[i] = fromEdgeVec(v)
	}
	return out
}

// approximateEdgeBezier flattens a bezier by stack-based subdivision,
// processing the right half after the left so samples come out in order.
func approximateEdgeBezier(cp []edgeVec) []edgeVec {
	if len(cp) == 0 {
		return nil
	}
	var out []edgeVec
	stack := make([][]edgeVec, 0, 32)
	stack = append(stack, cp)

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if edgeBezierFlatEnough(cur) {
			out = append(out, cur[0])
			continue
		}
		l, r := edgeBezierSubdivide(cur)
		stack = append(stack, r)
		stack = append(stack, l)
	}
	out = append(out, cp[len(cp)-1])
	return out
}

// edgeBezierFlatEnough checks second differences against the tolerance.
func edgeBezierFlatEnough(cp []edgeVec) bool {
	for i := 1; i < len(cp)-1; i++ {
		dx := cp[i-1].x - 2*cp[i].x + cp[i+1].x
		dt := cp[i-1].t - 2*cp[i].t + cp[i+1].t
		if dx*dx+dt*dt > edgeTolSq {
			return false
		}
	}
	return true
}

// edgeBezierSubdivide splits at the midpoint via the de Casteljau triangle.
func edgeBezierSubdivide(cp []edgeVec) (left, right []edgeVec) {
	n := len(cp)
	buf := make([]edgeVec, n*(n+1)/2)

	for i := 0; i < n; i++ {
		buf[i] = cp[i]
	}

	rowStart := 0
	nextRowStart := n
	for r := 1; r < n; r++ {
		for i := 0; i < n-r; i++ {
			a := buf[rowStart+i]
			b := buf[rowStart+i+1]
			buf[nextRowStart+i] = edgeVec{x: (a.x + b.x) * 0.5, t: (a.t + b.t) * 0.5}
		}
		rowStart = nextRowStart
		nextRowStart += n - r
	}

	left = make([]edgeVec, n)
	rowStart = 0
	for r := 0; r < n; r++ {
		left[r] = buf[rowStart]
		rowStart += n - r
	}

	right = make([]edgeVec, n)
	rowStart = 0
	rowEnd := n - 1
	for r := 0; r < n; r++ {
		right[n-1-r] = buf[rowStart+rowEnd]
		rowStart += n - r
		rowEnd--
	}
	return left, right
}

func dedupeEdgePoints(pts []edgeVec) []edgeVec {
	if len(pts) <= 1 {
		return pts
	}
	out := pts[:1]
	for _, p := range pts[1:] {
		last := out[len(out)-1]
		if math.Abs(p.x-last.x) < 1e-9 && math.Abs(p.t-last.t) < 1e-9 {
			continue
		}
		out = append(out, p)
	}
	return out
}

// EdgeXAt walks a resolved edge polyline and interpolates the lateral
// position at an absolute time, clamping outside the sampled range.
func EdgeXAt(points []EdgePoint, timeMs float64) float64 {
	if len(points) == 0 {
		return 0
	}
	if timeMs <= points[0].TimeMs {
		return points[0].X
	}
	for i := 1; i < len(points); i++ {
		if timeMs <= points[i].TimeMs {
			a, b := points[i-1], points[i]
			span := b.TimeMs - a.TimeMs
			if span <= 0 {
				return b.X
			}
			return a.X + (b.X-a.X)*(timeMs-a.TimeMs)/span
		}
	}
	return points[len(points)-1].X
}
