// Package effort computes the track spacing and the area a search unit can
// cover to a desired probability of detection.
package effort

import (
	"math"

	"github.com/pkg/errors"

	"github.com/a-bouts/sar-server/datum"
	"github.com/a-bouts/sar-server/sarerr"
	"github.com/a-bouts/sar-server/tables"
)

// MaxPoD is the probability of detection above which the track spacing
// formula overflows
const MaxPoD = 0.999

// Unit is a search unit taking part in the search
type Unit struct {
	Name     string          `json:"name" yaml:"name"`
	Searcher tables.Searcher `json:"searcher" yaml:"searcher"`
	// ground speed while searching, in knots
	Speed float64 `json:"speed" yaml:"speed" validate:"gt=0"`
	// time on scene, in hours
	Hours   float64 `json:"hours" yaml:"hours" validate:"gt=0"`
	PoD     float64 `json:"pod" yaml:"pod"`
	Fatigue bool    `json:"fatigue" yaml:"fatigue"`
}

// Allocation is the effort of one unit. Area is in square nm, widths and
// spacing in nm.
type Allocation struct {
	Unit      string    `json:"unit"`
	Speed     float64   `json:"speed"`
	Wu        float64   `json:"wu"`
	Fw        float64   `json:"fw"`
	Ff        float64   `json:"ff"`
	Wc        float64   `json:"wc"`
	PoD       float64   `json:"pod"`
	S         float64   `json:"s"`
	Hours     float64   `json:"hours"`
	Area      float64   `json:"area"`
	Rectangle datum.Box `json:"rectangle"`
}

// TrackSpacing returns S = Wc * (-5/8 * ln(1 - PoD))^(-5/7)
func TrackSpacing(wc float64, pod float64) (float64, error) {
	if math.IsNaN(pod) || pod <= 0 || pod >= 1 {
		return 0, sarerr.Invalid("probability of detection %v outside (0, 1)", pod)
	}
	if pod >= MaxPoD {
		return 0, errors.Wrapf(sarerr.ErrConfiguration, "probability of detection %v is not below %v", pod, MaxPoD)
	}
	if wc <= 0 {
		return 0, sarerr.Invalid("corrected sweep width %v is not positive", wc)
	}
	s := wc * math.Pow(-5.0/8.0*math.Log(1-pod), -5.0/7.0)
	if math.IsInf(s, 0) || math.IsNaN(s) || s <= 0 {
		return 0, errors.Wrapf(sarerr.ErrConfiguration, "track spacing for width %v and probability %v is not finite", wc, pod)
	}
	return s, nil
}

// Allocate computes the effort of u searching for the sweep width object
// target in the given conditions
func Allocate(u Unit, target int, sea tables.SeaState) (Allocation, error) {
	if err := sarerr.Validate(u); err != nil {
		return Allocation{}, errors.WithMessagef(err, "search unit '%s'", u.Name)
	}

	wu, err := tables.SweepWidth(u.Searcher, target, sea.VisibilityNm)
	if err != nil {
		return Allocation{}, err
	}
	fw, err := tables.WeatherCorrection(target, sea)
	if err != nil {
		return Allocation{}, err
	}

	a := Allocation{
		Unit:  u.Name,
		Speed: u.Speed,
		Wu:    wu,
		Fw:    fw,
		Ff:    tables.FatigueFactor(u.Fatigue),
		PoD:   u.PoD,
		Hours: u.Hours,
	}
	a.Wc = a.Wu * a.Fw * a.Ff

	if a.S, err = TrackSpacing(a.Wc, a.PoD); err != nil {
		return Allocation{}, errors.WithMessagef(err, "search unit '%s'", u.Name)
	}
	a.Area = a.S * a.Speed * a.Hours

	return a, nil
}

// TrackLength is the distance the unit sails or flies while searching
func (a Allocation) TrackLength() float64 {
	return a.Area / a.S
}

// Rectangles assigns each allocation a strip of the rectangle sharing the
// orientation, aspect ratio and center of box, sized to the total area. The
// strips are cut across the A→B side in proportion to each area.
func Rectangles(box datum.Box, allocs []Allocation) []Allocation {
	res := make([]Allocation, len(allocs))
	copy(res, allocs)

	total := 0.0
	for _, a := range res {
		total += a.Area
	}
	if total <= 0 {
		return res
	}

	length, width := box.Length(), box.Width()
	ratio := 1.0
	if length > 0 && width > 0 {
		ratio = length / width
	}
	rect := datum.Rectangle(box.Center(), box.Axis(), math.Sqrt(total*ratio), math.Sqrt(total/ratio))

	areas := make([]float64, len(res))
	for i, a := range res {
		areas[i] = a.Area
	}
	for i, strip := range rect.Split(areas) {
		res[i].Rectangle = strip
	}
	return res
}
