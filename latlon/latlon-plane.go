package latlon

import "math"

// Point is a position in a local tangent plane, in nautical miles.
// X grows towards east, Y towards north.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

func (p Point) Scale(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

func (p Point) Dot(q Point) float64 {
	return p.X*q.X + p.Y*q.Y
}

func (p Point) Length() float64 {
	return math.Hypot(p.X, p.Y)
}

// Unit returns the vector of length 1 pointing towards bearing (degrees true)
func Unit(bearing float64) Point {
	θ := toRadians(bearing)
	return Point{X: math.Sin(θ), Y: math.Cos(θ)}
}

// Bearing returns the true bearing of the vector p
func (p Point) Bearing() float64 {
	return wrap360(toDegrees(math.Atan2(p.X, p.Y)))
}

// Plane is an azimuthal equidistant projection centered on Origin: distances
// and bearings measured from the origin are the great-circle ones.
type Plane struct {
	Origin LatLon
	sph    LatLonSpherical
}

func NewPlane(origin LatLon) Plane {
	return Plane{Origin: origin}
}

func (pl Plane) ToPoint(p LatLon) Point {
	d, b := pl.sph.DistanceAndBearingTo(pl.Origin, p)
	return Unit(b).Scale(d)
}

func (pl Plane) ToLatLon(p Point) LatLon {
	d := p.Length()
	if d == 0 {
		return pl.Origin
	}
	return pl.sph.Destination(pl.Origin, p.Bearing(), d)
}
