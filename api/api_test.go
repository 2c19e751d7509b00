package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a-bouts/sar-server/api/model"
	"github.com/a-bouts/sar-server/datum"
	"github.com/a-bouts/sar-server/drift"
	"github.com/a-bouts/sar-server/effort"
	"github.com/a-bouts/sar-server/latlon"
	"github.com/a-bouts/sar-server/pattern"
	"github.com/a-bouts/sar-server/planner"
	"github.com/a-bouts/sar-server/sar"
	"github.com/a-bouts/sar-server/sarerr"
	"github.com/a-bouts/sar-server/tables"
)

var t0 = time.Date(2022, 8, 20, 6, 0, 0, 0, time.UTC)

type fixedWeather struct{}

func (fixedWeather) Sample(pos latlon.LatLon, t time.Time) (drift.Sample, error) {
	if pos.Lat > 80 {
		return drift.Sample{}, sarerr.ErrLookup
	}
	return drift.Sample{Time: t, CurrentSpeed: 0.5, CurrentHeading: 120, WindSpeed: 12, WindHeading: 300}, nil
}

func (fixedWeather) Stamps() []time.Time {
	return []time.Time{t0, t0.Add(3 * time.Hour)}
}

func document() sar.Document {
	return sar.Document{
		Kind: sar.DatumPoint,
		Case: sar.Params{
			CaseID:  "2022-120",
			LKP:     latlon.LatLon{Lat: 49.7, Lon: -1.9},
			LKPTime: t0,
			CSS:     t0.Add(2 * time.Hour),
			Errors:  datum.Errors{X: 0.5, Y: 0.3, SF: 1.2},
		},
		Weather: []drift.Sample{{Time: t0, CurrentSpeed: 1.5, CurrentHeading: 80, WindSpeed: 18, WindHeading: 240}},
		Units:   []effort.Unit{{Name: "SNSM Goury", Searcher: tables.SmallerVessel, Speed: 14, Hours: 2, PoD: 0.8}},
		Sea:     tables.SeaState{WindKnots: 18, WaveHeightFt: 4, VisibilityNm: 10},
		Pattern: pattern.ExpandingSquare,
	}
}

func newTestServer(t *testing.T, weather Sampler) (*server, http.Handler) {
	p := planner.New(sar.Engine{}, nil, nil, drift.DefaultRotation, time.Hour)
	s, err := newServer(false, sar.Engine{}, p, weather, []time.Duration{30 * time.Minute, time.Hour}, 16)
	require.NoError(t, err)
	return s, s.routes()
}

func do(t *testing.T, h http.Handler, method string, target string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	_, h := newTestServer(t, fixedWeather{})

	rec := do(t, h, http.MethodGet, "/sar/-/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var health model.Health
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&health))
	assert.Equal(t, "Ok", health.Status)
	assert.Equal(t, 2, health.Forecasts)
}

func TestTables(t *testing.T) {
	_, h := newTestServer(t, nil)

	rec := do(t, h, http.MethodGet, "/sar/api/v1/tables/leeway", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var leeway []model.LeewayType
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&leeway))
	assert.Len(t, leeway, 20)

	rec = do(t, h, http.MethodGet, "/sar/api/v1/tables/sweep", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sweep []model.SweepTable
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sweep))
	assert.Len(t, sweep, 2)
}

func TestPlan(t *testing.T) {
	s, h := newTestServer(t, nil)

	rec := do(t, h, http.MethodPost, "/sar/api/v1/plan", document())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var plan struct {
		Kind   string          `json:"kind"`
		CaseID string          `json:"caseId"`
		Routes []pattern.Route `json:"routes"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&plan))
	assert.Equal(t, "datum-point", plan.Kind)
	assert.Equal(t, "2022-120", plan.CaseID)
	require.Len(t, plan.Routes, 1)
	assert.Equal(t, "Expanding Square - 2022-120", plan.Routes[0].Name)
	assert.Equal(t, 1, s.plans.Len())

	// same request, served from the cache
	rec = do(t, h, http.MethodPost, "/sar/api/v1/plan?format=geojson", document())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"FeatureCollection"`)
	assert.Equal(t, 1, s.plans.Len())
}

func TestPlanErrors(t *testing.T) {
	_, h := newTestServer(t, nil)

	noUnits := document()
	noUnits.Units = nil

	lookup := document()
	lookup.Units[0].Searcher = tables.Ship
	lookup.Sea.VisibilityNm = 1

	diverging := document()
	diverging.Units[0].PoD = 0.9999

	for _, c := range []struct {
		name   string
		body   interface{}
		status int
		class  string
	}{
		{"malformed", `{"kind":`, http.StatusBadRequest, sarerr.ErrInputValidation.Error()},
		{"unknown kind", `{"kind":"sector"}`, http.StatusBadRequest, sarerr.ErrInputValidation.Error()},
		{"no units", noUnits, http.StatusBadRequest, sarerr.ErrInputValidation.Error()},
		{"lookup", lookup, http.StatusUnprocessableEntity, sarerr.ErrLookup.Error()},
		{"diverging", diverging, http.StatusUnprocessableEntity, sarerr.ErrConfiguration.Error()},
	} {
		rec := do(t, h, http.MethodPost, "/sar/api/v1/plan", c.body)
		assert.Equal(t, c.status, rec.Code, c.name)

		var res model.Error
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&res), c.name)
		assert.Equal(t, c.class, res.Class, c.name)
		assert.NotEmpty(t, res.Error, c.name)
	}
}

func TestPreview(t *testing.T) {
	_, h := newTestServer(t, nil)

	rec := do(t, h, http.MethodPost, "/sar/api/v1/preview", document())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var snapshots []struct {
		Offset time.Duration `json:"offset"`
		CSS    time.Time     `json:"css"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&snapshots))
	require.Len(t, snapshots, 2)
	assert.Equal(t, 30*time.Minute, snapshots[0].Offset)
	assert.Equal(t, t0.Add(3*time.Hour), snapshots[1].CSS)
}

func TestCases(t *testing.T) {
	_, h := newTestServer(t, nil)

	rec := do(t, h, http.MethodPost, "/sar/api/v1/cases", document())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var e planner.Entry
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&e))
	assert.Equal(t, "/sar/api/v1/cases/"+e.ID.String(), rec.Header().Get("Location"))

	rec = do(t, h, http.MethodGet, "/sar/api/v1/cases/"+e.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/sar/api/v1/cases", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []planner.Entry
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, e.ID, list[0].ID)

	rec = do(t, h, http.MethodDelete, "/sar/api/v1/cases/"+e.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodGet, "/sar/api/v1/cases/"+e.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, h, http.MethodDelete, "/sar/api/v1/cases/"+e.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/sar/api/v1/cases/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWeather(t *testing.T) {
	_, h := newTestServer(t, fixedWeather{})

	rec := do(t, h, http.MethodGet, "/sar/api/v1/weather/49.7/-1.9/2022-08-20T07:00:00Z", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var s drift.Sample
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&s))
	assert.Equal(t, t0.Add(time.Hour), s.Time)
	assert.Equal(t, 12.0, s.WindSpeed)

	rec = do(t, h, http.MethodGet, "/sar/api/v1/weather/north/-1.9/2022-08-20T07:00:00Z", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, h, http.MethodGet, "/sar/api/v1/weather/49.7/-1.9/yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, h, http.MethodGet, "/sar/api/v1/weather/85/-1.9/2022-08-20T07:00:00Z", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	_, h = newTestServer(t, nil)
	rec = do(t, h, http.MethodGet, "/sar/api/v1/weather/49.7/-1.9/2022-08-20T07:00:00Z", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetIp(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.10:4321"
	ip, err := getIp(r)
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.10", ip)

	r.Header.Set("X-FORWARDED-FOR", "unknown, 198.51.100.7")
	ip, _ = getIp(r)
	assert.Equal(t, "198.51.100.7", ip)

	r.Header.Set("X-REAL-IP", "203.0.113.5")
	ip, _ = getIp(r)
	assert.Equal(t, "203.0.113.5", ip)
}
