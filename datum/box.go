package datum

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/a-bouts/sar-server/latlon"
	"github.com/a-bouts/sar-server/sarerr"
)

// Box is a search rectangle. Corners go clockwise: A→B and C→D are the sides
// parallel to the box axis, D→A is the back edge and B→C the front one.
// Warning is set when the box could not be grown to enclose every circle.
type Box struct {
	A       latlon.LatLon
	B       latlon.LatLon
	C       latlon.LatLon
	D       latlon.LatLon
	Warning error
}

type boxJSON struct {
	A       latlon.LatLon `json:"a"`
	B       latlon.LatLon `json:"b"`
	C       latlon.LatLon `json:"c"`
	D       latlon.LatLon `json:"d"`
	Warning string        `json:"warning,omitempty"`
}

func (b Box) MarshalJSON() ([]byte, error) {
	j := boxJSON{A: b.A, B: b.B, C: b.C, D: b.D}
	if b.Warning != nil {
		j.Warning = b.Warning.Error()
	}
	return json.Marshal(j)
}

func (b *Box) UnmarshalJSON(data []byte) error {
	var j boxJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	b.A, b.B, b.C, b.D = j.A, j.B, j.C, j.D
	b.Warning = nil
	if j.Warning != "" {
		b.Warning = errors.Wrap(sarerr.ErrGeometry, j.Warning)
	}
	return nil
}

func (b Box) Corners() []latlon.LatLon {
	return []latlon.LatLon{b.A, b.B, b.C, b.D}
}

// Center is the mean of the four corners
func (b Box) Center() latlon.LatLon {
	pl := latlon.NewPlane(b.A)
	c := latlon.Point{}
	for _, p := range b.Corners() {
		c = c.Add(pl.ToPoint(p))
	}
	return pl.ToLatLon(c.Scale(0.25))
}

// Frame returns a plane centered on the box and the corners in that plane
func (b Box) Frame() (latlon.Plane, [4]latlon.Point) {
	pl := latlon.NewPlane(b.Center())
	return pl, [4]latlon.Point{pl.ToPoint(b.A), pl.ToPoint(b.B), pl.ToPoint(b.C), pl.ToPoint(b.D)}
}

// Axis is the bearing of the A→B side
func (b Box) Axis() float64 {
	_, pts := b.Frame()
	return pts[1].Sub(pts[0]).Bearing()
}

// Length is the length of the A→B side, in nm
func (b Box) Length() float64 {
	_, pts := b.Frame()
	return pts[1].Sub(pts[0]).Length()
}

// Width is the length of the D→A side, in nm
func (b Box) Width() float64 {
	_, pts := b.Frame()
	return pts[0].Sub(pts[3]).Length()
}

// Area in square nm
func (b Box) Area() float64 {
	return b.Length() * b.Width()
}

func (b Box) Contains(p latlon.LatLon) bool {
	pl, pts := b.Frame()
	return latlon.PointInPolygon(pl.ToPoint(p), pts[:])
}

func boxFrom(pl latlon.Plane, pts [4]latlon.Point, warning error) Box {
	return Box{
		A:       pl.ToLatLon(pts[0]),
		B:       pl.ToLatLon(pts[1]),
		C:       pl.ToLatLon(pts[2]),
		D:       pl.ToLatLon(pts[3]),
		Warning: warning,
	}
}

// rectangle returns the corners of the rectangle with axis u spanning
// [s0, s1] along u and [t0, t1] along the right normal n
func rectangle(u, n latlon.Point, s0, s1, t0, t1 float64) [4]latlon.Point {
	return [4]latlon.Point{
		u.Scale(s0).Add(n.Scale(t0)),
		u.Scale(s1).Add(n.Scale(t0)),
		u.Scale(s1).Add(n.Scale(t1)),
		u.Scale(s0).Add(n.Scale(t1)),
	}
}

// Square returns the north aligned square of side 2*radius centered on
// center
func Square(center latlon.LatLon, radius float64) Box {
	return Rectangle(center, 0, 2*radius, 2*radius)
}

// Rectangle returns the box centered on center whose A→B side, of the given
// length, is laid along axis
func Rectangle(center latlon.LatLon, axis, length, width float64) Box {
	pl := latlon.NewPlane(center)
	return boxFrom(pl, rectangle(latlon.Unit(axis), latlon.Unit(axis+90), -length/2, length/2, -width/2, width/2), nil)
}

// Split cuts the box across its A→B side into adjacent strips whose lengths
// are proportional to weights
func (b Box) Split(weights []float64) []Box {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return nil
	}

	pl, pts := b.Frame()
	ab := pts[1].Sub(pts[0])
	dc := pts[2].Sub(pts[3])

	res := make([]Box, 0, len(weights))
	f0 := 0.0
	for i, w := range weights {
		f1 := f0 + w/total
		if i == len(weights)-1 {
			f1 = 1
		}
		res = append(res, boxFrom(pl, [4]latlon.Point{
			pts[0].Add(ab.Scale(f0)),
			pts[0].Add(ab.Scale(f1)),
			pts[3].Add(dc.Scale(f1)),
			pts[3].Add(dc.Scale(f0)),
		}, b.Warning))
		f0 = f1
	}
	return res
}

var edgeNames = [4]string{"A-B", "B-C", "C-D", "D-A"}

// Enclose returns the rectangle enclosing the three circles. The rectangle is
// laid along the axis going from the smaller divergence circle to the larger
// one, tangent to both, then grown edge by edge until it encloses the
// downwind circle.
func Enclose(downwind, minus, plus Circle) Box {
	const ε = 1e-9

	pl := latlon.NewPlane(downwind.Center)

	small, large := minus, plus
	if plus.Radius < minus.Radius {
		small, large = plus, minus
	}
	ps := pl.ToPoint(small.Center)
	pL := pl.ToPoint(large.Center)

	θ := 0.0
	if axis := pL.Sub(ps); axis.Length() > ε {
		θ = axis.Bearing()
	}
	u := latlon.Unit(θ)
	n := latlon.Unit(θ + 90)

	// along the axis, measured from the origin
	ss, sL := ps.Dot(u), pL.Dot(u)
	s0 := min(ss-small.Radius, sL-large.Radius)
	s1 := max(ss+small.Radius, sL+large.Radius)
	// across the axis, which goes through both centers
	t := ps.Dot(n)
	pts := rectangle(u, n, s0, s1, t-large.Radius, t+large.Radius)

	normals := [4]latlon.Point{n.Scale(-1), u, n, u.Scale(-1)}
	pd := pl.ToPoint(downwind.Center)

	var warning error
	for i, m := range normals {
		c0, c1 := pts[i], pts[(i+1)%4]

		// outwards is on the left of every edge
		tangent := pd.Add(m.Scale(downwind.Radius))
		δ := latlon.SignedDistance(tangent, c0, c1)
		if δ <= ε {
			continue
		}

		e0, e1 := c0.Add(m.Scale(δ)), c1.Add(m.Scale(δ))
		q0, ok0 := latlon.LineLineIntersect(e0, e1, pts[(i+3)%4], c0)
		q1, ok1 := latlon.LineLineIntersect(e0, e1, c1, pts[(i+2)%4])
		if !ok0 && !ok1 {
			warning = errors.Wrapf(sarerr.ErrGeometry, "edge %s not grown by %.3f nm to enclose the downwind datum", edgeNames[i], δ)
			continue
		}
		if !ok0 {
			q0 = e0
		}
		if !ok1 {
			q1 = e1
		}
		pts[i], pts[(i+1)%4] = q0, q1
	}

	return boxFrom(pl, pts, warning)
}
