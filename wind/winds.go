package wind

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jasonlvhit/gocron"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/sar-server/drift"
	"github.com/a-bouts/sar-server/latlon"
	"github.com/a-bouts/sar-server/sarerr"
)

const stampLayout = "2006010215"

// Winds holds the forecasts found in a GRIB directory, keyed by validity
// time. Files are named after the run and the forecast hour, 2022082006.f003.
type Winds struct {
	dir       string
	forecasts map[string]*Forecast
	lock      sync.RWMutex
}

// NewWinds loads every forecast of dir
func NewWinds(dir string) *Winds {
	w := &Winds{
		dir:       dir,
		forecasts: make(map[string]*Forecast),
	}
	w.Merge()
	return w
}

// InitWinds loads dir and merges it again every interval
func InitWinds(dir string, interval time.Duration) *Winds {
	w := NewWinds(dir)

	seconds := uint64(interval.Seconds())
	if seconds == 0 {
		seconds = 15
	}
	s := gocron.NewScheduler()
	s.Every(seconds).Seconds().Do(w.Merge)

	go s.Start()

	return w
}

// parseName returns the validity time of a GRIB file name
func parseName(name string) (time.Time, error) {
	parts := strings.Split(name, ".")
	if len(parts) < 2 || len(parts[1]) < 2 {
		return time.Time{}, errors.Errorf("unexpected grib file name '%s'", name)
	}
	t, err := time.Parse(stampLayout, parts[0])
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parsing date of '%s'", name)
	}
	h, err := strconv.Atoi(parts[1][1:])
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "getting hour from file '%s'", name)
	}
	return t.Add(time.Hour * time.Duration(h)), nil
}

func (w *Winds) files() []string {
	var files []string
	err := filepath.Walk(w.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.WithError(err).Errorf("Error walking file '%s'", path)
		} else if info.Mode().IsRegular() && !strings.HasSuffix(info.Name(), ".tmp") {
			files = append(files, info.Name())
		}
		return nil
	})
	if err != nil {
		log.WithError(err).Error("Error walking grib files")
		return nil
	}
	sort.Strings(files)
	return files
}

// Merge drops the forecasts whose file is gone and loads the new files. For
// the same validity time the latest run wins.
func (w *Winds) Merge() {
	files := w.files()

	w.lock.Lock()
	defer w.lock.Unlock()

	present := make(map[string]bool, len(files))
	for _, f := range files {
		present[f] = true
	}
	for k, f := range w.forecasts {
		if !present[filepath.Base(f.File)] {
			log.WithField("stamp", k).Info("Remove forecast")
			delete(w.forecasts, k)
		}
	}

	for _, file := range files {
		date, err := parseName(file)
		if err != nil {
			log.WithError(err).Warn("Skip grib file")
			continue
		}
		stamp := date.Format(stampLayout)
		if f, found := w.forecasts[stamp]; found && filepath.Base(f.File) >= file {
			continue
		}

		forecast, err := Read(date, filepath.Join(w.dir, file))
		if err != nil {
			log.WithError(err).Errorf("Error loading grib file '%s'", file)
			continue
		}
		log.Debugf("Init %s %s", stamp, file)
		w.add(&forecast)
	}
}

// add stores f under its stamp, the caller holds the lock
func (w *Winds) add(f *Forecast) {
	w.forecasts[f.Date.Format(stampLayout)] = f
}

// find returns the forecasts around m and the fraction of the way from the
// first to the second. Outside the covered period the nearest forecast is
// used alone.
func (w *Winds) find(m time.Time, has func(*Forecast) bool) (*Forecast, *Forecast, float64) {
	stamp := m.Format(stampLayout)

	keys := make([]string, 0, len(w.forecasts))
	for k, f := range w.forecasts {
		if has(f) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil, nil, 0
	}
	sort.Strings(keys)
	if keys[0] > stamp {
		return w.forecasts[keys[0]], nil, 0
	}
	for i := range keys {
		if keys[i] > stamp {
			f1, f2 := w.forecasts[keys[i-1]], w.forecasts[keys[i]]
			h := m.Sub(f1.Date).Minutes()
			delta := f2.Date.Sub(f1.Date).Minutes()
			return f1, f2, h / delta
		}
	}
	return w.forecasts[keys[len(keys)-1]], nil, 0
}

func hasWind(f *Forecast) bool    { return f.Wind != nil }
func hasCurrent(f *Forecast) bool { return f.Current != nil }

func grid(f *Forecast, current bool) *Grid {
	if f == nil {
		return nil
	}
	if current {
		return f.Current
	}
	return f.Wind
}

// Sample returns the wind and current at pos and t. Missing currents are
// taken as slack water.
func (w *Winds) Sample(pos latlon.LatLon, t time.Time) (drift.Sample, error) {
	w.lock.RLock()
	defer w.lock.RUnlock()

	s := drift.Sample{Time: t}

	f1, f2, h := w.find(t, hasWind)
	if f1 == nil {
		return s, errors.Wrap(sarerr.ErrLookup, "no wind forecast")
	}
	u, v, ok := at(grid(f1, false), grid(f2, false), pos.Lat, pos.Lon, h)
	if !ok {
		return s, errors.Wrapf(sarerr.ErrLookup, "%s is outside the wind forecast", pos)
	}
	s.WindSpeed = knots(u, v)
	s.WindHeading = fromDegrees(u, v)

	f1, f2, h = w.find(t, hasCurrent)
	if f1 == nil {
		log.WithField("time", t).Debug("No current forecast")
		return s, nil
	}
	if u, v, ok = at(grid(f1, true), grid(f2, true), pos.Lat, pos.Lon, h); ok {
		s.CurrentSpeed = knots(u, v)
		s.CurrentHeading = towardsDegrees(u, v)
	}
	return s, nil
}

// Series samples the weather at pos every step from from until until, until
// excluded. The series has at least one sample.
func (w *Winds) Series(pos latlon.LatLon, from time.Time, until time.Time, step time.Duration) ([]drift.Sample, error) {
	if step <= 0 {
		return nil, sarerr.Invalid("sampling step %s is not positive", step)
	}
	var samples []drift.Sample
	for t := from; len(samples) == 0 || t.Before(until); t = t.Add(step) {
		s, err := w.Sample(pos, t)
		if err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, nil
}

// Stamps lists the validity times of the loaded forecasts
func (w *Winds) Stamps() []time.Time {
	w.lock.RLock()
	defer w.lock.RUnlock()

	stamps := make([]time.Time, 0, len(w.forecasts))
	for _, f := range w.forecasts {
		stamps = append(stamps, f.Date)
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i].Before(stamps[j]) })
	return stamps
}
