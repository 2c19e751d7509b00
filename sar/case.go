package sar

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/a-bouts/sar-server/datum"
	"github.com/a-bouts/sar-server/drift"
	"github.com/a-bouts/sar-server/effort"
	"github.com/a-bouts/sar-server/latlon"
	"github.com/a-bouts/sar-server/pattern"
	"github.com/a-bouts/sar-server/sarerr"
	"github.com/a-bouts/sar-server/tables"
)

// Kind selects the planning pipeline of a case
type Kind int

const (
	RapidResponse Kind = iota
	DatumPoint
	DatumLine
)

var kindNames = [...]string{"rapid-response", "datum-point", "datum-line"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

func ParseKind(s string) (Kind, error) {
	norm := strings.ReplaceAll(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-"), " ", "-")
	for i, n := range kindNames {
		if n == norm {
			return Kind(i), nil
		}
	}
	return 0, errors.Wrapf(sarerr.ErrInputValidation, "unknown case kind '%s'", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Source tells where the case comes from. SARIS imports have no weather of
// their own and are not drift corrected.
type Source string

const (
	Manual Source = "manual"
	SARIS  Source = "saris"
)

// Params are the inputs shared by every kind of case
type Params struct {
	CaseID  string        `json:"caseId" yaml:"caseId"`
	LKP     latlon.LatLon `json:"lkp" yaml:"lkp"`
	LKPTime time.Time     `json:"lkpTime" yaml:"lkpTime" validate:"required"`
	// commence search time and point
	CSS time.Time      `json:"css" yaml:"css" validate:"required"`
	CSP *latlon.LatLon `json:"csp,omitempty" yaml:"csp,omitempty"`
	// leeway table code
	LeewayType int `json:"leewayType" yaml:"leewayType" validate:"gte=0,lte=19"`
	// sweep width table code
	SweepTarget int          `json:"sweepTarget" yaml:"sweepTarget" validate:"gte=0,lte=24"`
	Errors      datum.Errors `json:"errors" yaml:"errors"`
	Source      Source       `json:"source,omitempty" yaml:"source,omitempty" validate:"omitempty,oneof=manual saris"`
}

func (p Params) validate() error {
	if err := sarerr.Validate(p); err != nil {
		return err
	}
	if p.CSS.Before(p.LKPTime) {
		return sarerr.Invalid("commence search time %s is before the last known position time %s", p.CSS.Format(time.RFC3339), p.LKPTime.Format(time.RFC3339))
	}
	return nil
}

// Case is one of RapidResponse, DatumPoint or DatumLine
type Case interface {
	Kind() Kind
	Common() Params
	validate() error
	at(css time.Time) Case
}

// RapidResponseCase drifts the downwind datum only and searches the square
// around it
type RapidResponseCase struct {
	Params
}

func (RapidResponseCase) Kind() Kind { return RapidResponse }

func (c RapidResponseCase) Common() Params { return c.Params }

func (c RapidResponseCase) validate() error { return c.Params.validate() }

func (c RapidResponseCase) at(css time.Time) Case {
	c.CSS = css
	return c
}

// DatumPointCase searches the box enclosing the downwind and divergence
// datums
type DatumPointCase struct {
	Params
}

func (DatumPointCase) Kind() Kind { return DatumPoint }

func (c DatumPointCase) Common() Params { return c.Params }

func (c DatumPointCase) validate() error { return c.Params.validate() }

func (c DatumPointCase) at(css time.Time) Case {
	c.CSS = css
	return c
}

// LinePoint is a possible position of the object along a datum line
type LinePoint struct {
	Position latlon.LatLon `json:"position" yaml:"position"`
	Time     time.Time     `json:"time" yaml:"time" validate:"required"`
}

// DatumLineCase computes a datum point for every point of the line. Params
// LKP and LKPTime are ignored.
type DatumLineCase struct {
	Params
	Line []LinePoint `json:"line" yaml:"line"`
}

func (DatumLineCase) Kind() Kind { return DatumLine }

func (c DatumLineCase) Common() Params { return c.Params }

func (c DatumLineCase) validate() error {
	if len(c.Line) < 2 {
		return sarerr.Invalid("datum line needs at least 2 points, got %d", len(c.Line))
	}
	for i, lp := range c.Line {
		p := c.Params
		p.LKP, p.LKPTime = lp.Position, lp.Time
		if err := p.validate(); err != nil {
			return errors.WithMessagef(err, "datum line point %d", i)
		}
	}
	return nil
}

func (c DatumLineCase) at(css time.Time) Case {
	c.CSS = css
	return c
}

// Request is everything needed to plan a case
type Request struct {
	Case    Case
	Weather []drift.Sample
	Units   []effort.Unit
	Sea     tables.SeaState
	Pattern pattern.Kind
	// turns the wind heading into the downwind bearing
	Rotation float64
}

// Document is the serialized form of a Request
type Document struct {
	Kind     Kind            `json:"kind" yaml:"kind"`
	Case     Params          `json:"case" yaml:"case"`
	Line     []LinePoint     `json:"line,omitempty" yaml:"line,omitempty"`
	Weather  []drift.Sample  `json:"weather" yaml:"weather"`
	Units    []effort.Unit   `json:"units" yaml:"units"`
	Sea      tables.SeaState `json:"sea" yaml:"sea"`
	Pattern  pattern.Kind    `json:"pattern" yaml:"pattern"`
	Rotation *float64        `json:"rotation,omitempty" yaml:"rotation,omitempty"`
}

// Request builds the request of d, with defaultRotation when d has none
func (d Document) Request(defaultRotation float64) (Request, error) {
	r := Request{
		Weather:  d.Weather,
		Units:    d.Units,
		Sea:      d.Sea,
		Pattern:  d.Pattern,
		Rotation: defaultRotation,
	}
	if d.Rotation != nil {
		r.Rotation = *d.Rotation
	}
	switch d.Kind {
	case RapidResponse:
		r.Case = RapidResponseCase{Params: d.Case}
	case DatumPoint:
		r.Case = DatumPointCase{Params: d.Case}
	case DatumLine:
		r.Case = DatumLineCase{Params: d.Case, Line: d.Line}
	default:
		return Request{}, sarerr.Invalid("unknown case kind %d", int(d.Kind))
	}
	return r, nil
}

// NewDocument is the inverse of Document.Request
func NewDocument(r Request) Document {
	rot := r.Rotation
	d := Document{
		Weather:  r.Weather,
		Units:    r.Units,
		Sea:      r.Sea,
		Pattern:  r.Pattern,
		Rotation: &rot,
	}
	if r.Case != nil {
		d.Kind = r.Case.Kind()
		d.Case = r.Case.Common()
		if l, ok := r.Case.(DatumLineCase); ok {
			d.Line = l.Line
		}
	}
	return d
}
