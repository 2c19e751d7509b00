package latlon

import "math"

// LineLineIntersect returns the intersection point of the two lines
// specified by the points (p1, p2) and (p3, p4). The returned bool is false
// for parallel or coincident lines, and for degenerate lines whose two
// points are the same.
func LineLineIntersect(p1, p2, p3, p4 Point) (Point, bool) {
	d12 := p1.Sub(p2)
	d34 := p3.Sub(p4)
	if d12.Length() < 1e-12 || d34.Length() < 1e-12 {
		return Point{}, false
	}

	denom := d12.X*d34.Y - d12.Y*d34.X
	if math.Abs(denom) < 1e-9*d12.Length()*d34.Length() {
		return Point{}, false
	}
	a := p1.X*p2.Y - p1.Y*p2.X
	b := p3.X*p4.Y - p3.Y*p4.X
	numx := a*d34.X - d12.X*b
	numy := a*d34.Y - d12.Y*b

	return Point{X: numx / denom, Y: numy / denom}, true
}

// SignedDistance returns the distance from p to the line through (a, b),
// positive on the left of a→b
func SignedDistance(p, a, b Point) float64 {
	ab := b.Sub(a)
	l := ab.Length()
	if l == 0 {
		return p.Sub(a).Length()
	}
	return (ab.X*(p.Y-a.Y) - ab.Y*(p.X-a.X)) / l
}

// PointInPolygon checks whether p lies inside the polygon; the last vertex
// must not repeat the first one.
func PointInPolygon(p Point, pts []Point) bool {
	inside := false
	for i := 0; i < len(pts); i++ {
		p0, p1 := pts[i], pts[(i+1)%len(pts)]
		if (p0.Y <= p.Y && p.Y < p1.Y) || (p1.Y <= p.Y && p.Y < p0.Y) {
			x := p0.X + (p.Y-p0.Y)*(p1.X-p0.X)/(p1.Y-p0.Y)
			if x > p.X {
				inside = !inside
			}
		}
	}
	return inside
}
