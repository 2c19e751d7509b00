package land

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 3 rows of 4 cells, half a degree each
func small() Land {
	return Land{lat0: 0, latN: 1, lon0: 0, lonN: 1.5, step: 0.5, data: []byte{0x02, 0x80}}
}

func TestIsLand(t *testing.T) {
	l := small()
	for _, c := range []struct {
		lat, lon float64
		want     bool
	}{
		{0.5, 1.0, true},
		{0.6, 0.9, true},
		{1, 0, true},
		{0, 0, false},
		{0.5, 0.5, false},
		{2, 0, false},
		{0.5, 5, false},
		{0.5, -1, false},
	} {
		assert.Equal(t, c.want, l.IsLand(c.lat, c.lon), "%v,%v", c.lat, c.lon)
	}
}

func TestLoad(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "output")
	require.NoError(t, os.WriteFile(file, []byte{0x80, 0x00}, 0o644))
	l, err := Load(file)
	require.NoError(t, err)

	assert.True(t, l.IsLand(-90, -180))
	assert.True(t, l.IsLand(-90, 180))
	assert.False(t, l.IsLand(-90, -180+worldStep))
	// beyond the truncated file
	assert.False(t, l.IsLand(48, -5))
}
