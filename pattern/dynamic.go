package pattern

import (
	"github.com/pkg/errors"

	"github.com/a-bouts/sar-server/drift"
)

// Correct returns a copy of r whose dynamic positions are the static ones
// drifted with the search object from the route start to their ETA
func Correct(r Route, samples []drift.Sample, objectType int, rotation float64) (Route, error) {
	res := r
	res.Waypoints = make([]Waypoint, len(r.Waypoints))

	for i, w := range r.Waypoints {
		track, err := drift.Advance(w.Static, samples, objectType, drift.Window{From: r.Start, Until: w.ETA}, rotation, 0)
		if err != nil {
			return Route{}, errors.WithMessagef(err, "waypoint '%s'", w.Name)
		}
		w.Dynamic = track.End()
		res.Waypoints[i] = w
	}

	return res, nil
}
