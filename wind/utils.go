package wind

import (
	"math"

	"github.com/a-bouts/sar-server/latlon"
)

const msToKnots = 3600.0 / 1852.0

// fromDegrees is the direction the flow comes from, meteorological convention
func fromDegrees(u float64, v float64) float64 {
	return latlon.Wrap360(math.Atan2(u, v)*180/math.Pi + 180)
}

// towardsDegrees is the direction the flow sets to, oceanographic convention
func towardsDegrees(u float64, v float64) float64 {
	return latlon.Wrap360(math.Atan2(u, v) * 180 / math.Pi)
}

func knots(u float64, v float64) float64 {
	return math.Sqrt(u*u+v*v) * msToKnots
}
