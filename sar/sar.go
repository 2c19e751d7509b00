// Package sar runs the planning pipeline of a search and rescue case: drift,
// datum, search area, effort allocation and search patterns.
package sar

import (
	"time"

	"github.com/pkg/errors"

	"github.com/a-bouts/sar-server/datum"
	"github.com/a-bouts/sar-server/drift"
	"github.com/a-bouts/sar-server/effort"
	"github.com/a-bouts/sar-server/latlon"
	"github.com/a-bouts/sar-server/pattern"
	"github.com/a-bouts/sar-server/sarerr"
)

type Plan struct {
	Kind   Kind      `json:"kind"`
	CaseID string    `json:"caseId,omitempty"`
	CSS    time.Time `json:"css"`
	// rapid response datum
	Datum *datum.Result `json:"datum,omitempty"`
	// one datum point per case, one per line point for datum lines
	Points []datum.Point `json:"points,omitempty"`
	Box    datum.Box     `json:"box"`
	// search area outline, the stitched boxes of a datum line
	Polygon     []latlon.LatLon     `json:"polygon"`
	Allocations []effort.Allocation `json:"allocations"`
	Routes      []pattern.Route     `json:"routes"`
}

// Warning is the geometry warning of the search box, if any
func (p Plan) Warning() error {
	return p.Box.Warning
}

// Engine plans cases. The zero value is ready to use.
type Engine struct {
	// flags route waypoints on land when set
	Land pattern.LandMask
}

func (e Engine) validate(req Request) error {
	if req.Case == nil {
		return sarerr.Invalid("missing case")
	}
	if err := req.Case.validate(); err != nil {
		return err
	}
	if err := drift.ValidateSeries(req.Weather); err != nil {
		return err
	}
	if len(req.Units) == 0 {
		return sarerr.Invalid("no search unit")
	}
	if err := sarerr.Validate(req.Sea); err != nil {
		return errors.WithMessage(err, "sea state")
	}
	return nil
}

// Plan computes the datum, search area, effort and routes of req. Invalid
// requests fail before anything is computed.
func (e Engine) Plan(req Request) (*Plan, error) {
	if err := e.validate(req); err != nil {
		return nil, err
	}

	params := req.Case.Common()
	plan := &Plan{
		Kind:   req.Case.Kind(),
		CaseID: params.CaseID,
		CSS:    params.CSS,
	}

	var err error
	switch c := req.Case.(type) {
	case RapidResponseCase:
		err = e.rapidResponse(plan, c, req)
	case DatumPointCase:
		err = e.datumPoint(plan, c, req)
	case DatumLineCase:
		err = e.datumLine(plan, c, req)
	default:
		err = sarerr.Invalid("unsupported case kind %s", req.Case.Kind())
	}
	if err != nil {
		return nil, err
	}

	allocs := make([]effort.Allocation, 0, len(req.Units))
	for _, u := range req.Units {
		a, err := effort.Allocate(u, params.SweepTarget, req.Sea)
		if err != nil {
			return nil, err
		}
		allocs = append(allocs, a)
	}
	plan.Allocations = effort.Rectangles(plan.Box, allocs)

	csp := plan.Box.Center()
	if params.CSP != nil {
		csp = *params.CSP
	}

	opts := pattern.Options{CaseID: params.CaseID, Land: e.Land}
	for _, a := range plan.Allocations {
		r, err := pattern.Generate(req.Pattern, a.Rectangle, csp, params.CSS, a, opts)
		if err != nil {
			return nil, errors.WithMessagef(err, "search unit '%s'", a.Unit)
		}
		if params.Source != SARIS {
			if r, err = pattern.Correct(r, req.Weather, params.LeewayType, req.Rotation); err != nil {
				return nil, err
			}
		}
		plan.Routes = append(plan.Routes, r)
	}

	return plan, nil
}

func (e Engine) rapidResponse(plan *Plan, c RapidResponseCase, req Request) error {
	w := drift.Window{From: c.LKPTime, Until: c.CSS}
	track, err := drift.Advance(c.LKP, req.Weather, c.LeewayType, w, req.Rotation, 0)
	if err != nil {
		return err
	}
	d := datum.Compute(c.LKP, c.LKPTime, track, c.Errors)
	plan.Datum = &d
	plan.Box = datum.Square(d.Position, d.Radius)
	plan.Polygon = plan.Box.Corners()
	return nil
}

func (e Engine) point(p Params, lkp latlon.LatLon, lkpTime time.Time, req Request) (datum.Point, error) {
	w := drift.Window{From: lkpTime, Until: p.CSS}
	chains, err := drift.RunChains(lkp, req.Weather, p.LeewayType, w, req.Rotation)
	if err != nil {
		return datum.Point{}, err
	}
	return datum.ComputePoint(lkp, lkpTime, chains, p.Errors), nil
}

func (e Engine) datumPoint(plan *Plan, c DatumPointCase, req Request) error {
	p, err := e.point(c.Params, c.LKP, c.LKPTime, req)
	if err != nil {
		return err
	}
	plan.Points = []datum.Point{p}
	plan.Box = p.Box
	plan.Polygon = plan.Box.Corners()
	return nil
}

func (e Engine) datumLine(plan *Plan, c DatumLineCase, req Request) error {
	boxes := make([]datum.Box, 0, len(c.Line))
	for i, lp := range c.Line {
		p, err := e.point(c.Params, lp.Position, lp.Time, req)
		if err != nil {
			return errors.WithMessagef(err, "datum line point %d", i)
		}
		plan.Points = append(plan.Points, p)
		boxes = append(boxes, p.Box)
	}

	first := plan.Points[0].Downwind.Position
	last := plan.Points[len(plan.Points)-1].Downwind.Position
	bearing := latlon.LatLonSpherical{}.BearingTo(first, last)

	plan.Polygon = datum.Stitch(boxes)
	plan.Box = datum.Envelope(boxes, bearing)
	return nil
}
