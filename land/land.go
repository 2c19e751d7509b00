// Package land tells whether a position is ashore, from a bit packed world
// mask of 1/120 degree cells.
package land

import (
	"math"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/sar-server/latlon"
)

// Land contains one bit per cell, 0 if sea and 1 if land, row by row from the
// south west corner
type Land struct {
	lat0 float64
	latN float64
	lon0 float64
	lonN float64
	step float64
	data []byte
}

const worldStep = 360.0 / 43200.0

// Load loads a world land mask file
func Load(file string) (*Land, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		log.WithError(err).Errorf("Error reading file '%s'", file)
		return nil, errors.Wrapf(err, "reading land file '%s'", file)
	}
	return &Land{
		lat0: -90.0,
		latN: 90.0,
		lon0: -180.0,
		lonN: 180.00 - worldStep,
		step: worldStep,
		data: b}, nil
}

// IsLand check if location is land or sea. Positions off the mask are sea.
func (l Land) IsLand(lat float64, lon float64) bool {
	if lat < l.lat0 || lat > l.latN {
		return false
	}
	lon = latlon.Wrap180(lon)

	i := int(math.Round(lat / l.step))
	j := int(math.Round(lon / l.step))

	i0 := int(math.Round(l.lat0 / l.step))
	j0 := int(math.Round(l.lon0 / l.step))
	jN := int(math.Round(l.lonN / l.step))

	di := i - i0
	dj := j - j0
	nj := jN - j0 + 1
	if dj < 0 || dj >= nj {
		return false
	}

	p := di*nj + dj

	pB := p / 8
	pb := uint(p % 8)
	if pB < 0 || pB >= len(l.data) {
		return false
	}

	return ((l.data[pB] >> (7 - pb)) & 0x01) == 0x01
}
