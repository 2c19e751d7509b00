package latlon

import (
	"fmt"
	"math"
)

const π = math.Pi

// R is the mean earth radius in nautical miles
const R = 6371e3 / 1852.0

type LatLon struct {
	Lat float64 `json:"lat" yaml:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" yaml:"lon" validate:"gte=-180,lte=180"`
}

func (p LatLon) String() string {
	return fmt.Sprintf("(%.5f, %.5f)", p.Lat, p.Lon)
}

func toRadians(a float64) float64 {
	return a * π / 180.0
}

func toDegrees(a float64) float64 {
	return a * 180.0 / π
}

func wrap360(d float64) float64 {
	if 0.0 <= d && d < 360.0 {
		return d
	}
	d = math.Mod(d, 360.0)
	if d < 0 {
		d += 360.0
	}
	return d
}

func wrap180(d float64) float64 {
	if -180.0 <= d && d < 180.0 {
		return d
	}
	return wrap360(d+180.0) - 180.0
}

// Wrap360 normalizes a bearing into [0, 360)
func Wrap360(d float64) float64 {
	return wrap360(d)
}

// Wrap180 normalizes a longitude or a bearing difference into [-180, 180)
func Wrap180(d float64) float64 {
	return wrap180(d)
}
