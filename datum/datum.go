// Package datum turns drift tracks into datums, search radii and the search
// box enclosing them.
package datum

import (
	"time"

	"github.com/a-bouts/sar-server/drift"
	"github.com/a-bouts/sar-server/latlon"
)

// Errors are the position uncertainties of a case, in nautical miles
type Errors struct {
	// initial position error
	X float64 `json:"x" yaml:"x" validate:"gte=0"`
	// navigational error of the search unit
	Y float64 `json:"y" yaml:"y" validate:"gte=0"`
	// safety factor
	SF float64 `json:"sf" yaml:"sf" validate:"gt=0"`
}

// RDV is the residual drift vector from the last known position
type RDV struct {
	Bearing  float64 `json:"bearing"`
	Distance float64 `json:"distance"`
	Speed    float64 `json:"speed"`
}

// Circle is a datum with its search radius
type Circle struct {
	Center latlon.LatLon `json:"center"`
	Radius float64       `json:"radius"`
}

type Result struct {
	Position latlon.LatLon `json:"position"`
	Time     time.Time     `json:"time"`
	RDV      RDV           `json:"rdv"`
	Radius   float64       `json:"radius"`
}

func (r Result) Circle() Circle {
	return Circle{Center: r.Position, Radius: r.Radius}
}

// Radius returns ((X + Y) + 0.3 * drift) * SF
func Radius(e Errors, drift float64) float64 {
	return ((e.X + e.Y) + 0.3*drift) * e.SF
}

// Compute builds the datum at the end of track
func Compute(lkp latlon.LatLon, lkpTime time.Time, track drift.Track, e Errors) Result {
	end := track.End()
	hours := track.Hours()

	r := Result{
		Position: end,
		Time:     lkpTime.Add(time.Duration(hours * float64(time.Hour))),
	}
	r.RDV.Distance, r.RDV.Bearing = latlon.LatLonSpherical{}.DistanceAndBearingTo(lkp, end)
	if hours > 0 {
		r.RDV.Speed = r.RDV.Distance / hours
	}
	r.Radius = Radius(e, r.RDV.Distance)
	return r
}

// Point is the datum point of one drift computation: the three datums and
// the box enclosing their circles
type Point struct {
	Downwind Result `json:"downwind"`
	Minus    Result `json:"minus"`
	Plus     Result `json:"plus"`
	Box      Box    `json:"box"`
}

// ComputePoint builds the datums of the three chains and encloses them
func ComputePoint(lkp latlon.LatLon, lkpTime time.Time, chains drift.Chains, e Errors) Point {
	p := Point{
		Downwind: Compute(lkp, lkpTime, chains.Downwind, e),
		Minus:    Compute(lkp, lkpTime, chains.Minus, e),
		Plus:     Compute(lkp, lkpTime, chains.Plus, e),
	}
	p.Box = Enclose(p.Downwind.Circle(), p.Minus.Circle(), p.Plus.Circle())
	return p
}
