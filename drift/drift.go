// Package drift dead-reckons a drifting object through a time series of
// current and wind observations.
package drift

import (
	"time"

	"github.com/pkg/errors"

	"github.com/a-bouts/sar-server/latlon"
	"github.com/a-bouts/sar-server/sarerr"
	"github.com/a-bouts/sar-server/tables"
)

// DefaultRotation turns the wind heading (from) into the downwind bearing
const DefaultRotation = 180.0

// Sample is one weather observation. It holds until the next sample of the
// series, the last one until the end of the drift window.
type Sample struct {
	Time time.Time `json:"time" yaml:"time" validate:"required"`
	// total water current, heading towards
	CurrentSpeed   float64 `json:"currentSpeed" yaml:"currentSpeed" validate:"gte=0"`
	CurrentHeading float64 `json:"currentHeading" yaml:"currentHeading" validate:"gte=0,lte=360"`
	// wind, heading from
	WindSpeed   float64 `json:"windSpeed" yaml:"windSpeed" validate:"gte=0"`
	WindHeading float64 `json:"windHeading" yaml:"windHeading" validate:"gte=0,lte=360"`
}

// Downwind returns the bearing the leeway pushes the object towards
func (s Sample) Downwind(rotation float64) float64 {
	return latlon.Wrap360(s.WindHeading + rotation)
}

// Leg is the contribution of one sample: the current moves the object from
// Start to Current, then the leeway from Current to End
type Leg struct {
	Start   latlon.LatLon `json:"start"`
	Current latlon.LatLon `json:"current"`
	End     latlon.LatLon `json:"end"`
	From    time.Time     `json:"from"`
	Until   time.Time     `json:"until"`
	Hours   float64       `json:"hours"`
	// leeway bearing applied on this leg
	Bearing float64 `json:"bearing"`
	// leeway speed in knots
	Leeway float64 `json:"leeway"`
}

// Track holds the start followed by the current-only and the leeway
// positions of every leg
type Track struct {
	Positions []latlon.LatLon `json:"positions"`
	Legs      []Leg           `json:"legs"`
}

// End is the last position of the track
func (t Track) End() latlon.LatLon {
	return t.Positions[len(t.Positions)-1]
}

// Hours is the total drift duration of the track
func (t Track) Hours() float64 {
	h := 0.0
	for _, l := range t.Legs {
		h += l.Hours
	}
	return h
}

// Window bounds the drift period, usually from the last known position time
// to the commence search time
type Window struct {
	From  time.Time `json:"from"`
	Until time.Time `json:"until"`
}

func (w Window) clamp(t time.Time) time.Time {
	if t.Before(w.From) {
		return w.From
	}
	if t.After(w.Until) {
		return w.Until
	}
	return t
}

// Hours is the duration of the window
func (w Window) Hours() float64 {
	return w.Until.Sub(w.From).Hours()
}

// ValidateSeries checks that samples is a non-empty, strictly time ordered
// series of valid observations
func ValidateSeries(samples []Sample) error {
	if len(samples) == 0 {
		return sarerr.Invalid("empty weather series")
	}
	for i, s := range samples {
		if err := sarerr.Validate(s); err != nil {
			return errors.WithMessagef(err, "weather sample %d", i)
		}
		if i > 0 && !s.Time.After(samples[i-1].Time) {
			return sarerr.Invalid("weather sample %d at %s does not follow %s", i, s.Time.Format(time.RFC3339), samples[i-1].Time.Format(time.RFC3339))
		}
	}
	return nil
}

// Advance drifts start through samples over the window w. The leeway of
// objectType is applied along the downwind bearing of each sample turned by
// offset degrees.
func Advance(start latlon.LatLon, samples []Sample, objectType int, w Window, rotation float64, offset float64) (Track, error) {
	if err := ValidateSeries(samples); err != nil {
		return Track{}, err
	}
	if w.Until.Before(w.From) {
		return Track{}, sarerr.Invalid("drift window ends at %s before it starts at %s", w.Until.Format(time.RFC3339), w.From.Format(time.RFC3339))
	}
	leeway, err := tables.LeewayFor(objectType)
	if err != nil {
		return Track{}, err
	}

	sph := latlon.LatLonSpherical{}

	track := Track{
		Positions: make([]latlon.LatLon, 0, 2*len(samples)+1),
		Legs:      make([]Leg, 0, len(samples)),
	}
	track.Positions = append(track.Positions, start)

	pos := start
	for i, s := range samples {
		from := w.From
		if i > 0 {
			from = w.clamp(s.Time)
		}
		until := w.Until
		if i < len(samples)-1 {
			until = w.clamp(samples[i+1].Time)
		}
		hours := until.Sub(from).Hours()
		if hours < 0 {
			hours = 0
		}

		leg := Leg{
			Start:   pos,
			From:    from,
			Until:   until,
			Hours:   hours,
			Bearing: latlon.Wrap360(s.Downwind(rotation) + offset),
			Leeway:  leeway.Speed(s.WindSpeed),
		}
		leg.Current = sph.Destination(pos, s.CurrentHeading, s.CurrentSpeed*hours)
		leg.End = sph.Destination(leg.Current, leg.Bearing, leg.Leeway*hours)

		track.Legs = append(track.Legs, leg)
		track.Positions = append(track.Positions, leg.Current, leg.End)
		pos = leg.End
	}

	return track, nil
}

// Chains are the three drift hypotheses of a datum point case
type Chains struct {
	Downwind   Track   `json:"downwind"`
	Minus      Track   `json:"minus"`
	Plus       Track   `json:"plus"`
	Divergence float64 `json:"divergence"`
}

// RunChains drifts start along the downwind bearing and along the bearings
// turned by minus and plus the divergence of objectType, at every leg
func RunChains(start latlon.LatLon, samples []Sample, objectType int, w Window, rotation float64) (Chains, error) {
	div, err := tables.Divergence(objectType)
	if err != nil {
		return Chains{}, err
	}
	c := Chains{Divergence: div}
	if c.Downwind, err = Advance(start, samples, objectType, w, rotation, 0); err != nil {
		return Chains{}, err
	}
	if c.Minus, err = Advance(start, samples, objectType, w, rotation, -div); err != nil {
		return Chains{}, err
	}
	if c.Plus, err = Advance(start, samples, objectType, w, rotation, div); err != nil {
		return Chains{}, err
	}
	return c, nil
}
