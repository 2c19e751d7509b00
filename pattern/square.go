package pattern

import (
	"github.com/a-bouts/sar-server/latlon"
	"github.com/a-bouts/sar-server/sarerr"
)

// square draws an expanding square from the center of the corners: legs of
// s, s, 2s, 2s, 3s... turning right, the first one heading to the D-A edge.
// A leg that would overrun budget is not started.
func square(corners [4]latlon.Point, s float64, budget float64) ([]latlon.Point, error) {
	if budget < s {
		return nil, sarerr.Invalid("track length %.2f nm is shorter than one %.2f nm leg", budget, s)
	}

	center := latlon.Point{}
	for _, c := range corners {
		center = center.Add(c.Scale(0.25))
	}
	dir := unit(corners[3].Add(corners[0]).Scale(0.5).Sub(center))

	cur := center
	pts := []latlon.Point{cur}
	used := 0.0
	for i := 0; ; i++ {
		l := s * float64(i/2+1)
		if used+l > budget*(1+1e-9) {
			break
		}
		cur = cur.Add(dir.Scale(l))
		pts = append(pts, cur)
		used += l
		// turn right
		dir = latlon.Point{X: dir.Y, Y: -dir.X}
	}

	return pts, nil
}
