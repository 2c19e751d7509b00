package tables

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a-bouts/sar-server/sarerr"
)

func TestLeewaySpeed(t *testing.T) {
	s, err := LeewaySpeed(0, 2.0)
	require.NoError(t, err)
	assert.InDelta(t, 0.09, s, 1e-12)

	// negative intercept is clamped at low wind
	s, err = LeewaySpeed(4, 1.0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, s)

	_, err = LeewaySpeed(20, 10)
	assert.True(t, errors.Is(err, sarerr.ErrInputValidation))
	_, err = LeewaySpeed(-1, 10)
	assert.True(t, errors.Is(err, sarerr.ErrInputValidation))
}

func TestDivergence(t *testing.T) {
	d, err := Divergence(0)
	require.NoError(t, err)
	assert.Equal(t, 30.0, d)

	assert.Len(t, divergences, len(leeways))

	_, err = Divergence(20)
	assert.True(t, errors.Is(err, sarerr.ErrInputValidation))
}

func TestLeewayTypesIsACopy(t *testing.T) {
	types := LeewayTypes()
	require.Len(t, types, 20)
	types[0].Slope = 42

	l, _ := LeewayFor(0)
	assert.Equal(t, 0.011, l.Slope)
}

func TestSweepWidth(t *testing.T) {
	w, err := SweepWidth(SmallerVessel, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.4, w)

	w, err = SweepWidth(Ship, 24, 20)
	require.NoError(t, err)
	assert.Equal(t, 24.4, w)

	_, err = SweepWidth(Ship, 0, 1)
	assert.True(t, errors.Is(err, sarerr.ErrLookup))

	_, err = SweepWidth(SmallerVessel, 0, 7)
	assert.True(t, errors.Is(err, sarerr.ErrLookup))

	_, err = SweepWidth(SmallerVessel, 25, 5)
	assert.True(t, errors.Is(err, sarerr.ErrInputValidation))
}

func TestSweepWidthTablesAreComplete(t *testing.T) {
	for code := range targets {
		for _, v := range Visibilities {
			_, err := SweepWidth(SmallerVessel, code, v)
			assert.NoError(t, err, "smaller vessel, object %d, visibility %d", code, v)
			if v == 1 {
				continue
			}
			_, err = SweepWidth(Ship, code, v)
			assert.NoError(t, err, "ship, object %d, visibility %d", code, v)
		}
	}
}

func TestSweepWidthRows(t *testing.T) {
	rows := SweepWidthRows(Ship)
	require.Len(t, rows, 25)
	require.Len(t, rows[0], 5)
	assert.Equal(t, [2]float64{3, 0.7}, rows[0][0])
	assert.Equal(t, [2]float64{20, 0.9}, rows[0][4])
}

func TestParseSearcher(t *testing.T) {
	s, err := ParseSearcher("Ship")
	require.NoError(t, err)
	assert.Equal(t, Ship, s)

	var u Searcher
	require.NoError(t, u.UnmarshalText([]byte("smaller-vessel")))
	assert.Equal(t, SmallerVessel, u)

	_, err = ParseSearcher("helicopter")
	assert.True(t, errors.Is(err, sarerr.ErrInputValidation))
}

func TestWeatherCorrection(t *testing.T) {
	tests := []struct {
		code int
		sea  SeaState
		want float64
	}{
		{0, SeaState{WindKnots: 10, WaveHeightFt: 2}, 1.0},
		{0, SeaState{WindKnots: 15, WaveHeightFt: 3}, 1.0},
		{0, SeaState{WindKnots: 20, WaveHeightFt: 3}, 0.5},
		{0, SeaState{WindKnots: 10, WaveHeightFt: 6}, 0.25},
		{24, SeaState{WindKnots: 20, WaveHeightFt: 4}, 0.9},
		{24, SeaState{WindKnots: 30, WaveHeightFt: 8}, 0.9},
		{12, SeaState{WindKnots: 5, WaveHeightFt: 1}, 1.0},
	}
	for _, tt := range tests {
		got, err := WeatherCorrection(tt.code, tt.sea)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "object %d in %+v", tt.code, tt.sea)
	}

	_, err := WeatherCorrection(30, SeaState{})
	assert.Error(t, err)
}

func TestFatigueFactor(t *testing.T) {
	assert.Equal(t, 0.9, FatigueFactor(true))
	assert.Equal(t, 1.0, FatigueFactor(false))
}
