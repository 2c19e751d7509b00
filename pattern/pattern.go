// Package pattern lays search tracks over an effective area and re-projects
// them through the drift of the search object.
package pattern

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/a-bouts/sar-server/datum"
	"github.com/a-bouts/sar-server/effort"
	"github.com/a-bouts/sar-server/latlon"
	"github.com/a-bouts/sar-server/sarerr"
)

type Kind int

const (
	ParallelSweep Kind = iota
	CreepingLine
	ExpandingSquare
)

var kindNames = map[Kind]string{
	ParallelSweep:   "Parallel Sweep",
	CreepingLine:    "Creeping Line",
	ExpandingSquare: "Expanding Square",
}

func (k Kind) String() string {
	if n, found := kindNames[k]; found {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind accepts the pattern names, case and separator insensitive
func ParseKind(s string) (Kind, error) {
	norm := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(s))
	for k, n := range kindNames {
		if strings.ReplaceAll(strings.ToLower(n), " ", "") == norm {
			return k, nil
		}
	}
	return 0, errors.Wrapf(sarerr.ErrInputValidation, "unknown search pattern '%s'", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(strings.ReplaceAll(strings.ToLower(k.String()), " ", "-")), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

type Waypoint struct {
	Name    string        `json:"name"`
	Static  latlon.LatLon `json:"static"`
	Dynamic latlon.LatLon `json:"dynamic"`
	ETA     time.Time     `json:"eta"`
	// length of the leg ending at this waypoint, in nm
	Distance float64 `json:"distance"`
	Speed    float64 `json:"speed"`
	// cross track tolerance either side of the leg, in nm
	XTDPort      float64 `json:"xtdPort"`
	XTDStarboard float64 `json:"xtdStarboard"`
	OnLand       bool    `json:"onLand"`
}

type Route struct {
	Name  string    `json:"name"`
	Kind  Kind      `json:"kind"`
	Start time.Time `json:"start"`
	// track spacing and track length budget, in nm
	S         float64    `json:"s"`
	Budget    float64    `json:"budget"`
	Waypoints []Waypoint `json:"waypoints"`
}

// Length is the drawn track length
func (r Route) Length() float64 {
	l := 0.0
	for _, w := range r.Waypoints {
		l += w.Distance
	}
	return l
}

// End is the arrival time at the last waypoint
func (r Route) End() time.Time {
	if len(r.Waypoints) == 0 {
		return r.Start
	}
	return r.Waypoints[len(r.Waypoints)-1].ETA
}

// LandMask tells whether a position is on land
type LandMask interface {
	IsLand(lat float64, lon float64) bool
}

type Options struct {
	CaseID string
	Land   LandMask
}

// Generate lays a route of kind over area, starting at the corner nearest
// csp for the sweeps or at the center for the expanding square. The track
// length is the area covered by alloc divided by its track spacing.
func Generate(kind Kind, area datum.Box, csp latlon.LatLon, css time.Time, alloc effort.Allocation, opts Options) (Route, error) {
	if alloc.S <= 0 || alloc.Speed <= 0 || alloc.Area <= 0 {
		return Route{}, sarerr.Invalid("allocation of unit '%s' has no effort (s %v, speed %v, area %v)", alloc.Unit, alloc.S, alloc.Speed, alloc.Area)
	}
	budget := alloc.TrackLength()

	pl, corners := area.Frame()

	var pts []latlon.Point
	var err error
	switch kind {
	case ParallelSweep, CreepingLine:
		pts, err = sweep(kind, corners, pl.ToPoint(csp), alloc.S, budget)
	case ExpandingSquare:
		pts, err = square(corners, alloc.S, budget)
	default:
		err = sarerr.Invalid("unknown search pattern %d", int(kind))
	}
	if err != nil {
		return Route{}, err
	}

	name := kind.String()
	if opts.CaseID != "" {
		name += " - " + opts.CaseID
	}
	r := Route{
		Name:      name,
		Kind:      kind,
		Start:     css,
		S:         alloc.S,
		Budget:    budget,
		Waypoints: make([]Waypoint, len(pts)),
	}

	hours := 0.0
	for i, p := range pts {
		w := Waypoint{
			Static:       pl.ToLatLon(p),
			Speed:        alloc.Speed,
			XTDPort:      alloc.S / 2,
			XTDStarboard: alloc.S / 2,
		}
		if i > 0 {
			w.Distance = p.Sub(pts[i-1]).Length()
			hours += w.Distance / alloc.Speed
		}
		w.ETA = css.Add(time.Duration(hours * float64(time.Hour)))
		w.Dynamic = w.Static
		switch i {
		case 0:
			w.Name = "Start"
		case len(pts) - 1:
			w.Name = "End"
		default:
			w.Name = fmt.Sprintf("WP %d", i+1)
		}
		if opts.Land != nil {
			w.OnLand = opts.Land.IsLand(w.Static.Lat, w.Static.Lon)
		}
		r.Waypoints[i] = w
	}

	return r, nil
}
