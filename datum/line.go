package datum

import (
	"github.com/a-bouts/sar-server/latlon"
)

// Stitch joins the boxes of a datum line into one polygon: the back edge of
// the first box, the front corners of the two last boxes and the back edge
// again, in that fixed order.
func Stitch(boxes []Box) []latlon.LatLon {
	switch len(boxes) {
	case 0:
		return nil
	case 1:
		return boxes[0].Corners()
	}
	first := boxes[0]
	prev := boxes[len(boxes)-2]
	last := boxes[len(boxes)-1]
	return []latlon.LatLon{first.A, prev.B, last.B, last.C, prev.C, first.D}
}

// Envelope returns the smallest rectangle laid along bearing enclosing every
// corner of the boxes. It carries the first warning of the boxes.
func Envelope(boxes []Box, bearing float64) Box {
	if len(boxes) == 0 {
		return Box{}
	}

	pl := latlon.NewPlane(boxes[0].Center())
	u := latlon.Unit(bearing)
	n := latlon.Unit(bearing + 90)

	var warning error
	first := true
	var s0, s1, t0, t1 float64
	for _, b := range boxes {
		if warning == nil {
			warning = b.Warning
		}
		for _, c := range b.Corners() {
			p := pl.ToPoint(c)
			s, t := p.Dot(u), p.Dot(n)
			if first {
				s0, s1, t0, t1 = s, s, t, t
				first = false
				continue
			}
			s0, s1 = min(s0, s), max(s1, s)
			t0, t1 = min(t0, t), max(t1, t)
		}
	}

	return boxFrom(pl, rectangle(u, n, s0, s1, t0, t1), warning)
}
