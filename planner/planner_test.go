package planner

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a-bouts/sar-server/datum"
	"github.com/a-bouts/sar-server/drift"
	"github.com/a-bouts/sar-server/effort"
	"github.com/a-bouts/sar-server/latlon"
	"github.com/a-bouts/sar-server/pattern"
	"github.com/a-bouts/sar-server/sar"
	"github.com/a-bouts/sar-server/sarerr"
	"github.com/a-bouts/sar-server/tables"
)

var t0 = time.Date(2022, 8, 20, 6, 0, 0, 0, time.UTC)

type steadyWeather struct {
	calls []time.Time
	err   error
}

func (w *steadyWeather) Series(pos latlon.LatLon, from time.Time, until time.Time, step time.Duration) ([]drift.Sample, error) {
	w.calls = append(w.calls, until)
	if w.err != nil {
		return nil, w.err
	}
	var samples []drift.Sample
	for t := from; len(samples) == 0 || t.Before(until); t = t.Add(step) {
		samples = append(samples, drift.Sample{Time: t, CurrentSpeed: 1, CurrentHeading: 45, WindSpeed: 15, WindHeading: 250})
	}
	return samples, nil
}

type recorder struct {
	sync.Mutex
	messages []string
}

func (r *recorder) Send(message string) error {
	r.Lock()
	defer r.Unlock()
	r.messages = append(r.messages, message)
	return nil
}

func document() sar.Document {
	return sar.Document{
		Kind: sar.DatumPoint,
		Case: sar.Params{
			CaseID:     "2022-118",
			LKP:        latlon.LatLon{Lat: 47.5, Lon: -4},
			LKPTime:    t0,
			CSS:        t0.Add(90 * time.Minute),
			LeewayType: 7,
			Errors:     datum.Errors{X: 1, Y: 0.5, SF: 1.1},
		},
		Units:   []effort.Unit{{Name: "SNSM Audierne", Searcher: tables.SmallerVessel, Speed: 12, Hours: 2, PoD: 0.8}},
		Sea:     tables.SeaState{WindKnots: 15, WaveHeightFt: 3, VisibilityNm: 10},
		Pattern: pattern.ParallelSweep,
	}
}

func TestRequestSamplesWeather(t *testing.T) {
	w := &steadyWeather{}
	p := New(sar.Engine{}, w, nil, drift.DefaultRotation, 30*time.Minute)

	req, err := p.Request(document())
	require.NoError(t, err)
	assert.Len(t, req.Weather, 3)
	assert.Equal(t, t0, req.Weather[0].Time)
	assert.Equal(t, drift.DefaultRotation, req.Rotation)

	// samples sent with the document are kept
	doc := document()
	doc.Weather = []drift.Sample{{Time: t0}}
	req, err = p.Request(doc)
	require.NoError(t, err)
	assert.Len(t, req.Weather, 1)
	assert.Len(t, w.calls, 1)
}

func TestRequestErrors(t *testing.T) {
	p := New(sar.Engine{}, &steadyWeather{err: sarerr.ErrLookup}, nil, drift.DefaultRotation, time.Hour)
	_, err := p.Plan(document())
	assert.True(t, errors.Is(err, sarerr.ErrLookup))

	doc := document()
	doc.Case.CSS = t0.Add(-time.Hour)
	_, err = p.Plan(doc)
	assert.True(t, errors.Is(err, sarerr.ErrInputValidation))
}

func TestDatumLineOrigin(t *testing.T) {
	doc := document()
	doc.Kind = sar.DatumLine
	doc.Line = []sar.LinePoint{
		{Position: latlon.LatLon{Lat: 47.6, Lon: -4}, Time: t0.Add(20 * time.Minute)},
		{Position: latlon.LatLon{Lat: 47.5, Lon: -4}, Time: t0.Add(10 * time.Minute)},
	}
	pos, from := origin(doc)
	assert.Equal(t, doc.Line[1].Position, pos)
	assert.Equal(t, t0.Add(10*time.Minute), from)
}

func TestRegistry(t *testing.T) {
	p := New(sar.Engine{}, &steadyWeather{}, nil, drift.DefaultRotation, time.Hour)
	p.now = func() time.Time { return t0.Add(time.Hour) }

	e1, err := p.Register(document())
	require.NoError(t, err)
	require.NotNil(t, e1.Plan)
	assert.Equal(t, t0.Add(time.Hour), e1.Registered)

	p.now = func() time.Time { return t0.Add(2 * time.Hour) }
	e2, err := p.Register(document())
	require.NoError(t, err)
	assert.NotEqual(t, e1.ID, e2.ID)

	got, found := p.Get(e1.ID)
	assert.True(t, found)
	assert.Equal(t, e1, got)

	list := p.List()
	require.Len(t, list, 2)
	assert.Equal(t, e1.ID, list[0].ID)

	assert.True(t, p.Remove(e1.ID))
	assert.False(t, p.Remove(e1.ID))
	_, found = p.Get(e1.ID)
	assert.False(t, found)
	_, found = p.Get(uuid.New())
	assert.False(t, found)

	doc := document()
	doc.Units = nil
	_, err = p.Register(doc)
	assert.True(t, errors.Is(err, sarerr.ErrInputValidation))
	assert.Len(t, p.List(), 1)
}

func TestRefresh(t *testing.T) {
	w := &steadyWeather{}
	n := &recorder{}
	p := New(sar.Engine{}, w, n, drift.DefaultRotation, time.Hour)
	p.now = func() time.Time { return t0.Add(time.Hour) }

	e, err := p.Register(document())
	require.NoError(t, err)
	assert.Equal(t, document().Case.CSS, e.Plan.CSS)

	// the search starts now once the planned start has passed
	later := t0.Add(3 * time.Hour)
	p.now = func() time.Time { return later }
	p.Refresh()

	got, _ := p.Get(e.ID)
	assert.Equal(t, later, got.Plan.CSS)
	assert.Equal(t, later, got.Updated)
	assert.Empty(t, got.Error)
	assert.Empty(t, n.messages)
	// the registered request is not touched
	assert.Equal(t, document().Case.CSS, got.Document.Case.CSS)

	// a failing forecast keeps the last plan and alerts
	w.err = errors.New("forecast unavailable")
	p.Refresh()

	got, _ = p.Get(e.ID)
	assert.Equal(t, later, got.Plan.CSS)
	assert.Contains(t, got.Error, "forecast unavailable")
	require.Len(t, n.messages, 1)
	assert.Contains(t, n.messages[0], "2022-118")
}

func TestPreviewSamplesUpToTheLatestStart(t *testing.T) {
	w := &steadyWeather{}
	p := New(sar.Engine{}, w, nil, drift.DefaultRotation, time.Hour)

	snaps, err := p.Preview(document(), time.Hour, 3*time.Hour)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	require.Len(t, w.calls, 1)
	assert.Equal(t, document().Case.CSS.Add(3*time.Hour), w.calls[0])

	snaps, err = p.Preview(document())
	require.NoError(t, err)
	assert.Len(t, snaps, len(sar.PreviewOffsets))
}
