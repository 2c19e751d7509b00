package model

import (
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/a-bouts/sar-server/datum"
	"github.com/a-bouts/sar-server/latlon"
	"github.com/a-bouts/sar-server/sar"
)

func point(p latlon.LatLon) orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// ring closes the outline
func ring(pts []latlon.LatLon) orb.Ring {
	r := make(orb.Ring, 0, len(pts)+1)
	for _, p := range pts {
		r = append(r, point(p))
	}
	if len(pts) > 0 {
		r = append(r, point(pts[0]))
	}
	return r
}

func feature(g orb.Geometry, kind string) *geojson.Feature {
	f := geojson.NewFeature(g)
	f.Properties["type"] = kind
	return f
}

func datumFeature(r datum.Result, chain string) *geojson.Feature {
	f := feature(point(r.Position), "datum")
	f.Properties["chain"] = chain
	f.Properties["time"] = r.Time.Format(time.RFC3339)
	f.Properties["radius"] = r.Radius
	f.Properties["rdvBearing"] = r.RDV.Bearing
	f.Properties["rdvDistance"] = r.RDV.Distance
	f.Properties["rdvSpeed"] = r.RDV.Speed
	return f
}

// FeatureCollection exports a plan: the search area and box, the datums, the
// unit rectangles and the routes, static and drift corrected
func FeatureCollection(plan *sar.Plan) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	area := feature(orb.Polygon{ring(plan.Polygon)}, "search-area")
	area.Properties["kind"] = plan.Kind.String()
	area.Properties["caseId"] = plan.CaseID
	area.Properties["css"] = plan.CSS.Format(time.RFC3339)
	if w := plan.Warning(); w != nil {
		area.Properties["warning"] = w.Error()
	}
	fc.Append(area)

	box := feature(orb.Polygon{ring(plan.Box.Corners())}, "search-box")
	box.Properties["axis"] = plan.Box.Axis()
	box.Properties["length"] = plan.Box.Length()
	box.Properties["width"] = plan.Box.Width()
	box.Properties["area"] = plan.Box.Area()
	fc.Append(box)

	if plan.Datum != nil {
		fc.Append(datumFeature(*plan.Datum, "downwind"))
	}
	for _, p := range plan.Points {
		fc.Append(datumFeature(p.Downwind, "downwind"))
		fc.Append(datumFeature(p.Minus, "divergence-minus"))
		fc.Append(datumFeature(p.Plus, "divergence-plus"))
	}

	for _, a := range plan.Allocations {
		f := feature(orb.Polygon{ring(a.Rectangle.Corners())}, "unit-area")
		f.Properties["unit"] = a.Unit
		f.Properties["trackSpacing"] = a.S
		f.Properties["sweepWidth"] = a.Wc
		f.Properties["pod"] = a.PoD
		f.Properties["area"] = a.Area
		fc.Append(f)
	}

	for _, r := range plan.Routes {
		static := make(orb.LineString, 0, len(r.Waypoints))
		dynamic := make(orb.LineString, 0, len(r.Waypoints))
		for _, w := range r.Waypoints {
			static = append(static, point(w.Static))
			dynamic = append(dynamic, point(w.Dynamic))
		}
		for _, l := range []struct {
			kind string
			line orb.LineString
		}{{"route", static}, {"route-dynamic", dynamic}} {
			f := feature(l.line, l.kind)
			f.Properties["name"] = r.Name
			f.Properties["pattern"] = r.Kind.String()
			f.Properties["start"] = r.Start.Format(time.RFC3339)
			f.Properties["length"] = r.Length()
			fc.Append(f)
		}
	}

	return fc
}
