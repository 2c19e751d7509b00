package tables

import (
	"github.com/pkg/errors"

	"github.com/a-bouts/sar-server/sarerr"
)

// Leeway is the linear regression of leeway speed (kn) over wind speed (kn)
// for one drifting object type.
type Leeway struct {
	Code      int     `json:"code"`
	Name      string  `json:"name"`
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// Speed returns the leeway speed for a wind of windKnots. Regressions with a
// negative intercept are clamped to 0 at low wind.
func (l Leeway) Speed(windKnots float64) float64 {
	s := l.Slope*windKnots + l.Intercept
	if s < 0 {
		return 0
	}
	return s
}

var leeways = [...]Leeway{
	{0, "Person in water (PIW)", 0.011, 0.068},
	{1, "Raft (4-6 person), unknown drift anchor status", 0.029, 0.039},
	{2, "Raft (4-6 person) with drift anchor", 0.018, 0.027},
	{3, "Raft (4-6 person) without drift anchor", 0.038, -0.041},
	{4, "Raft (15-25 person), unknown drift anchor status", 0.036, -0.086},
	{5, "Raft (15-25 person) with drift anchor", 0.031, -0.070},
	{6, "Raft (15-25 person) without drift anchor", 0.039, -0.060},
	{7, "Dinghy (flat bottom)", 0.034, 0.040},
	{8, "Dinghy (keel)", 0.030, 0.080},
	{9, "Dinghy (capsized)", 0.017, 0.0},
	{10, "Kayak with person", 0.011, 0.240},
	{11, "Surfboard with person", 0.020, 0.0},
	{12, "Windsurfer with person, mast and sail in water", 0.023, 0.100},
	{13, "Sailboat (long keel)", 0.030, 0.0},
	{14, "Sailboat (fin keel)", 0.040, 0.0},
	{15, "Motorboat", 0.069, -0.080},
	{16, "Fishing vessel", 0.042, 0.0},
	{17, "Trawler", 0.040, 0.0},
	{18, "Coaster", 0.028, 0.0},
	{19, "Wreckage", 0.037, 0.020},
}

// divergences holds the angular spread (degrees) either side of the downwind
// direction, per leeway code. It needs no wind speed.
var divergences = [...]float64{
	30, // PIW
	20,
	16,
	20,
	14,
	12,
	12,
	22,
	15,
	15,
	15,
	15,
	12,
	48,
	48,
	19,
	48,
	33,
	48,
	10, // wreckage
}

// LeewayTypes returns a copy of the leeway table
func LeewayTypes() []Leeway {
	res := make([]Leeway, len(leeways))
	copy(res, leeways[:])
	return res
}

// LeewayFor returns the leeway regression of the object type code
func LeewayFor(code int) (Leeway, error) {
	if code < 0 || code >= len(leeways) {
		return Leeway{}, errors.Wrapf(sarerr.ErrInputValidation, "leeway object type %d outside 0-%d", code, len(leeways)-1)
	}
	return leeways[code], nil
}

// LeewaySpeed returns the leeway speed (kn) of object type code in a wind
// of windKnots
func LeewaySpeed(code int, windKnots float64) (float64, error) {
	l, err := LeewayFor(code)
	if err != nil {
		return 0, err
	}
	return l.Speed(windKnots), nil
}

// Divergence returns the divergence angle (degrees) of object type code
func Divergence(code int) (float64, error) {
	if code < 0 || code >= len(divergences) {
		return 0, errors.Wrapf(sarerr.ErrInputValidation, "leeway object type %d outside 0-%d", code, len(divergences)-1)
	}
	return divergences[code], nil
}
