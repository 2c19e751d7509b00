package effort

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a-bouts/sar-server/datum"
	"github.com/a-bouts/sar-server/latlon"
	"github.com/a-bouts/sar-server/sarerr"
	"github.com/a-bouts/sar-server/tables"
)

func TestTrackSpacingDecreasesWithPoD(t *testing.T) {
	prev := math.Inf(1)
	for pod := 0.05; pod < 0.99; pod += 0.05 {
		s, err := TrackSpacing(2.0, pod)
		require.NoError(t, err)
		assert.Less(t, s, prev, "pod %.2f", pod)
		prev = s
	}
}

func TestTrackSpacingLimits(t *testing.T) {
	// no finite limit as pod tends to 0
	s, err := TrackSpacing(1.0, 1e-6)
	require.NoError(t, err)
	assert.Greater(t, s, 1e3)

	// -5/8 ln(1-pod) = 1
	s, err = TrackSpacing(1.5, 1-math.Exp(-8.0/5.0))
	require.NoError(t, err)
	assert.InDelta(t, 1.5, s, 1e-9)
}

func TestTrackSpacingErrors(t *testing.T) {
	for _, pod := range []float64{0, -0.1, 1, 1.5, math.NaN()} {
		_, err := TrackSpacing(1, pod)
		assert.True(t, errors.Is(err, sarerr.ErrInputValidation), "pod %v", pod)
	}
	for _, pod := range []float64{0.999, 0.9995} {
		_, err := TrackSpacing(1, pod)
		assert.True(t, errors.Is(err, sarerr.ErrConfiguration), "pod %v", pod)
	}
	_, err := TrackSpacing(0, 0.5)
	assert.True(t, errors.Is(err, sarerr.ErrInputValidation))
}

func TestAllocate(t *testing.T) {
	u := Unit{Name: "SAR 1", Searcher: tables.SmallerVessel, Speed: 10, Hours: 3, PoD: 0.78, Fatigue: true}
	sea := tables.SeaState{WindKnots: 20, WaveHeightFt: 4, VisibilityNm: 5}

	a, err := Allocate(u, 1, sea)
	require.NoError(t, err)

	assert.Equal(t, 1.7, a.Wu)
	assert.Equal(t, 0.5, a.Fw)
	assert.Equal(t, 0.9, a.Ff)
	assert.InDelta(t, 1.7*0.5*0.9, a.Wc, 1e-12)

	s, _ := TrackSpacing(a.Wc, 0.78)
	assert.Equal(t, s, a.S)
	assert.InDelta(t, a.S*10*3, a.Area, 1e-12)
	assert.InDelta(t, 30, a.TrackLength(), 1e-9)
}

func TestAllocateErrors(t *testing.T) {
	sea := tables.SeaState{WindKnots: 5, WaveHeightFt: 1, VisibilityNm: 1}

	_, err := Allocate(Unit{Name: "ship", Searcher: tables.Ship, Speed: 12, Hours: 4, PoD: 0.8}, 3, sea)
	assert.True(t, errors.Is(err, sarerr.ErrLookup))

	_, err = Allocate(Unit{Name: "rib", Searcher: tables.SmallerVessel, Speed: 0, Hours: 4, PoD: 0.8}, 3, sea)
	assert.True(t, errors.Is(err, sarerr.ErrInputValidation))

	_, err = Allocate(Unit{Name: "rib", Searcher: tables.SmallerVessel, Speed: 20, Hours: 4, PoD: 0.9995}, 3, sea)
	assert.True(t, errors.Is(err, sarerr.ErrConfiguration))
	assert.Contains(t, err.Error(), "rib")
}

func TestRectangles(t *testing.T) {
	center := latlon.LatLon{Lat: 48, Lon: -5}
	box := datum.Rectangle(center, 30, 20, 10)

	allocs := []Allocation{{Unit: "a", S: 1, Area: 100}, {Unit: "b", S: 1, Area: 50}}
	res := Rectangles(box, allocs)
	require.Len(t, res, 2)

	// input untouched
	assert.Equal(t, datum.Box{}, allocs[0].Rectangle)

	// same aspect ratio as the box, total area 150
	total := 0.0
	for _, a := range res {
		assert.InDelta(t, 30, latlon.Wrap360(a.Rectangle.Axis()), 0.1)
		assert.InDelta(t, math.Sqrt(150/2.0), a.Rectangle.Width(), 1e-3)
		total += a.Rectangle.Area()
	}
	assert.InDelta(t, 150, total, 0.01)
	assert.InDelta(t, 100, res[0].Rectangle.Area(), 0.01)

	// strips are adjacent: the front edge of the first is the back edge of
	// the second
	assert.Equal(t, res[0].Rectangle.B, res[1].Rectangle.A)
	assert.Equal(t, res[0].Rectangle.C, res[1].Rectangle.D)
}
