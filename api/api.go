package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/sar-server/api/model"
	"github.com/a-bouts/sar-server/drift"
	"github.com/a-bouts/sar-server/latlon"
	"github.com/a-bouts/sar-server/planner"
	"github.com/a-bouts/sar-server/sar"
	"github.com/a-bouts/sar-server/sarerr"
)

// Sampler reads the forecast at one position and time
type Sampler interface {
	Sample(pos latlon.LatLon, t time.Time) (drift.Sample, error)
	Stamps() []time.Time
}

type server struct {
	cpuprofile bool
	engine     sar.Engine
	planner    *planner.Planner
	weather    Sampler
	offsets    []time.Duration
	plans      *lru.Cache[string, *sar.Plan]
}

// InitServer routes the planning API. weather may be nil when no GRIB
// directory is configured.
func InitServer(cpuprofile bool, engine sar.Engine, p *planner.Planner, weather Sampler, offsets []time.Duration, cacheSize int) (http.Handler, error) {
	s, err := newServer(cpuprofile, engine, p, weather, offsets, cacheSize)
	if err != nil {
		return nil, err
	}
	return s.routes(), nil
}

func newServer(cpuprofile bool, engine sar.Engine, p *planner.Planner, weather Sampler, offsets []time.Duration, cacheSize int) (*server, error) {

	plans, err := lru.New[string, *sar.Plan](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "plan cache")
	}

	return &server{
		cpuprofile: cpuprofile,
		engine:     engine,
		planner:    p,
		weather:    weather,
		offsets:    offsets,
		plans:      plans,
	}, nil
}

func (s *server) routes() http.Handler {
	router := mux.NewRouter().StrictSlash(true)

	router.HandleFunc("/sar/-/healthz", s.healthz).Methods(http.MethodGet)

	apiV1 := router.PathPrefix("/sar/api/v1").Subrouter()
	apiV1.HandleFunc("/tables/leeway", s.leewayTable).Methods(http.MethodGet)
	apiV1.HandleFunc("/tables/sweep", s.sweepTable).Methods(http.MethodGet)
	apiV1.HandleFunc("/plan", s.plan).Methods(http.MethodPost)
	apiV1.HandleFunc("/preview", s.preview).Methods(http.MethodPost)
	apiV1.HandleFunc("/cases", s.listCases).Methods(http.MethodGet)
	apiV1.HandleFunc("/cases", s.registerCase).Methods(http.MethodPost)
	apiV1.HandleFunc("/cases/{id}", s.getCase).Methods(http.MethodGet)
	apiV1.HandleFunc("/cases/{id}", s.removeCase).Methods(http.MethodDelete)
	apiV1.HandleFunc("/weather/{lat}/{lon}/{time}", s.sample).Methods(http.MethodGet)

	return handlers.RecoveryHandler()(handlers.CORS(
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(router))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("Error encoding response")
	}
}

// statusOf maps the error classes: bad input is the client's, lookups and
// diverging formulas are valid requests the tables cannot serve
func statusOf(err error) int {
	switch sarerr.Class(err) {
	case sarerr.ErrInputValidation:
		return http.StatusBadRequest
	case sarerr.ErrLookup, sarerr.ErrConfiguration:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, logger *log.Entry, err error) {
	status := statusOf(err)
	res := model.Error{Error: err.Error()}
	if class := sarerr.Class(err); class != nil {
		res.Class = class.Error()
	}
	if status == http.StatusInternalServerError {
		logger.WithError(err).Error("Request failed")
	} else {
		logger.WithError(err).Info("Request rejected")
	}
	writeJSON(w, status, res)
}

func requestLogger(r *http.Request, action string) *log.Entry {
	fields := log.Fields{
		"action": action,
	}
	if ip, err := getIp(r); err == nil {
		fields["IP"] = ip
	}
	return log.WithFields(fields)
}

func decode(r *http.Request) (sar.Document, error) {
	var doc sar.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		return doc, errors.Wrap(sarerr.ErrInputValidation, err.Error())
	}
	return doc, nil
}

func (s *server) healthz(w http.ResponseWriter, r *http.Request) {
	h := model.Health{Status: "Ok", Cases: len(s.planner.List())}
	if s.weather != nil {
		h.Forecasts = len(s.weather.Stamps())
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *server) leewayTable(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.LeewayTypes())
}

func (s *server) sweepTable(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.SweepTables())
}

// digest identifies a request once its weather is resolved
func digest(req sar.Request) (string, error) {
	b, err := json.Marshal(sar.NewDocument(req))
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

func (s *server) plan(w http.ResponseWriter, r *http.Request) {
	if s.cpuprofile {
		defer profile.Start().Stop()
	}

	logger := requestLogger(r, "plan")

	doc, err := decode(r)
	if err != nil {
		writeError(w, logger, err)
		return
	}
	logger = logger.WithFields(log.Fields{"case": doc.Case.CaseID, "kind": doc.Kind})

	req, err := s.planner.Request(doc)
	if err != nil {
		writeError(w, logger, err)
		return
	}

	key, err := digest(req)
	if err != nil {
		writeError(w, logger, err)
		return
	}

	start := time.Now()
	plan, cached := s.plans.Get(key)
	if !cached {
		plan, err = s.engine.Plan(req)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		s.plans.Add(key, plan)
	}
	logger.WithField("cached", cached).Infof("Plan took %s", time.Since(start))

	if warning := plan.Warning(); warning != nil {
		logger.WithError(warning).Warn("Best effort search box")
	}

	if r.URL.Query().Get("format") == "geojson" {
		w.Header().Set("Content-Type", "application/geo+json")
		writeJSON(w, http.StatusOK, model.FeatureCollection(plan))
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *server) preview(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(r, "preview")

	doc, err := decode(r)
	if err != nil {
		writeError(w, logger, err)
		return
	}

	start := time.Now()
	snapshots, err := s.planner.Preview(doc, s.offsets...)
	if err != nil {
		writeError(w, logger, err)
		return
	}
	logger.Infof("Preview of %d runs took %s", len(snapshots), time.Since(start))

	writeJSON(w, http.StatusOK, snapshots)
}

func (s *server) registerCase(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(r, "register")

	doc, err := decode(r)
	if err != nil {
		writeError(w, logger, err)
		return
	}
	e, err := s.planner.Register(doc)
	if err != nil {
		writeError(w, logger, err)
		return
	}
	w.Header().Set("Location", "/sar/api/v1/cases/"+e.ID.String())
	writeJSON(w, http.StatusCreated, e)
}

func (s *server) listCases(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.planner.List())
}

func caseID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return id, errors.Wrap(sarerr.ErrInputValidation, err.Error())
	}
	return id, nil
}

func (s *server) getCase(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(r, "case")

	id, err := caseID(r)
	if err != nil {
		writeError(w, logger, err)
		return
	}
	e, found := s.planner.Get(id)
	if !found {
		writeJSON(w, http.StatusNotFound, model.Error{Error: fmt.Sprintf("no case %s", id)})
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *server) removeCase(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(r, "remove")

	id, err := caseID(r)
	if err != nil {
		writeError(w, logger, err)
		return
	}
	if !s.planner.Remove(id) {
		writeJSON(w, http.StatusNotFound, model.Error{Error: fmt.Sprintf("no case %s", id)})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) sample(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(r, "weather")

	if s.weather == nil {
		writeJSON(w, http.StatusNotFound, model.Error{Error: "no weather source"})
		return
	}

	lat, err := strconv.ParseFloat(mux.Vars(r)["lat"], 64)
	if err != nil {
		writeError(w, logger, sarerr.Invalid("latitude '%s'", mux.Vars(r)["lat"]))
		return
	}
	lon, err := strconv.ParseFloat(mux.Vars(r)["lon"], 64)
	if err != nil {
		writeError(w, logger, sarerr.Invalid("longitude '%s'", mux.Vars(r)["lon"]))
		return
	}
	t, err := time.Parse(time.RFC3339, mux.Vars(r)["time"])
	if err != nil {
		writeError(w, logger, sarerr.Invalid("time '%s'", mux.Vars(r)["time"]))
		return
	}

	pos := latlon.LatLon{Lat: lat, Lon: lon}
	res, err := s.weather.Sample(pos, t)
	if err != nil {
		writeError(w, logger, err)
		return
	}

	logger.Infof("Weather %s at %s : wind %.1f kt from %.0f°, current %.1f kt to %.0f°", pos, t.Format(time.RFC3339), res.WindSpeed, res.WindHeading, res.CurrentSpeed, res.CurrentHeading)

	writeJSON(w, http.StatusOK, res)
}

func getIp(r *http.Request) (string, error) {
	//Get IP from the X-REAL-IP header
	ip := r.Header.Get("X-REAL-IP")
	netIP := net.ParseIP(ip)
	if netIP != nil {
		return ip, nil
	}

	//Get IP from X-FORWARDED-FOR header
	ips := r.Header.Get("X-FORWARDED-FOR")
	splitIps := strings.Split(ips, ",")
	for _, ip := range splitIps {
		ip = strings.TrimSpace(ip)
		netIP := net.ParseIP(ip)
		if netIP != nil {
			return ip, nil
		}
	}

	//Get IP from RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "", err
	}
	netIP = net.ParseIP(ip)
	if netIP != nil {
		return ip, nil
	}
	return "", fmt.Errorf("No valid ip found")
}
