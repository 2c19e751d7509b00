package pattern

import (
	"github.com/a-bouts/sar-server/latlon"
	"github.com/a-bouts/sar-server/sarerr"
)

// nearestCorner returns the index of the corner closest to p, the first one
// on ties
func nearestCorner(corners [4]latlon.Point, p latlon.Point) int {
	best := 0
	bestDist := corners[0].Sub(p).Length()
	for i := 1; i < len(corners); i++ {
		if d := corners[i].Sub(p).Length(); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// sweep draws the boustrophedon of a parallel sweep, legs along the long
// side, or of a creeping line, legs along the short side. Legs are spaced by
// s and the track stops after budget nm, cutting the last segment short.
func sweep(kind Kind, corners [4]latlon.Point, csp latlon.Point, s float64, budget float64) ([]latlon.Point, error) {
	k := nearestCorner(corners, csp)
	corner := corners[k]

	e1 := corners[(k+1)%4].Sub(corner)
	e2 := corners[(k+3)%4].Sub(corner)

	long, short := e1, e2
	if e2.Length() > e1.Length() {
		long, short = e2, e1
	}
	along, across := long, short
	if kind == CreepingLine {
		along, across = short, long
	}

	dl := unit(along)
	ds := unit(across)
	leg := along.Length() - s
	if leg < s {
		leg = s
	}
	if budget < leg {
		return nil, sarerr.Invalid("track length %.2f nm is shorter than one %.2f nm leg", budget, leg)
	}

	cur := corner.Add(dl.Scale(s / 2)).Add(ds.Scale(s / 2))
	pts := []latlon.Point{cur}

	remaining := budget
	dir := 1.0
	for remaining > 1e-9*budget {
		for _, seg := range []struct {
			d latlon.Point
			l float64
		}{{dl.Scale(dir), leg}, {ds, s}} {
			l := seg.l
			if remaining < l {
				l = remaining
			}
			cur = cur.Add(seg.d.Scale(l))
			pts = append(pts, cur)
			remaining -= l
			if remaining <= 1e-9*budget {
				break
			}
		}
		dir = -dir
	}

	return pts, nil
}

func unit(p latlon.Point) latlon.Point {
	l := p.Length()
	if l == 0 {
		return latlon.Point{X: 0, Y: 1}
	}
	return p.Scale(1 / l)
}
