package tables

// SeaState are the on-scene conditions driving the weather correction
type SeaState struct {
	WindKnots    float64 `json:"windKnots" yaml:"windKnots" validate:"gte=0"`
	WaveHeightFt float64 `json:"waveHeightFt" yaml:"waveHeightFt" validate:"gte=0"`
	VisibilityNm int     `json:"visibilityNm" yaml:"visibilityNm"`
}

// rows: PIW & small boats, other objects; columns: calm, moderate, rough
var weatherCorrections = [2][3]float64{
	{1.0, 0.5, 0.25},
	{1.0, 0.9, 0.9},
}

// Tier returns the sea state tier: 0 for wind ≤ 15 kn and waves ≤ 3 ft,
// 1 for wind ≤ 25 kn and waves ≤ 5 ft, 2 otherwise
func (s SeaState) Tier() int {
	if s.WindKnots <= 15 && s.WaveHeightFt <= 3 {
		return 0
	}
	if s.WindKnots <= 25 && s.WaveHeightFt <= 5 {
		return 1
	}
	return 2
}

// WeatherCorrection returns the sweep width correction factor for the sea
// state and the object type code of the sweep width tables
func WeatherCorrection(code int, s SeaState) (float64, error) {
	t, err := TargetFor(code)
	if err != nil {
		return 0, err
	}
	r := 1
	if t.Small {
		r = 0
	}
	return weatherCorrections[r][s.Tier()], nil
}

// FatigueFactor reduces the sweep width by 10% for fatigued crews
func FatigueFactor(fatigued bool) float64 {
	if fatigued {
		return 0.9
	}
	return 1.0
}
