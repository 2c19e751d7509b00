// Package planner keeps the active cases of the rescue centre and plans them
// again as time passes and forecasts are updated.
package planner

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jasonlvhit/gocron"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/sar-server/drift"
	"github.com/a-bouts/sar-server/latlon"
	"github.com/a-bouts/sar-server/sar"
	"github.com/a-bouts/sar-server/sarerr"
)

// Weather samples a forecast along a period at a fixed position
type Weather interface {
	Series(pos latlon.LatLon, from time.Time, until time.Time, step time.Duration) ([]drift.Sample, error)
}

// Notifier alerts the duty officer
type Notifier interface {
	Send(message string) error
}

// Entry is an active case and its latest plan
type Entry struct {
	ID         uuid.UUID    `json:"id"`
	Document   sar.Document `json:"request"`
	Registered time.Time    `json:"registered"`
	Updated    time.Time    `json:"updated"`
	Plan       *sar.Plan    `json:"plan,omitempty"`
	Error      string       `json:"error,omitempty"`
}

type Planner struct {
	engine   sar.Engine
	weather  Weather
	notifier Notifier
	rotation float64
	step     time.Duration
	now      func() time.Time

	cases map[uuid.UUID]*Entry
	lock  sync.RWMutex
}

// New returns a planner. weather fills the requests sent without samples and
// notifier receives the failed and best effort plans, both may be nil.
func New(engine sar.Engine, weather Weather, notifier Notifier, rotation float64, step time.Duration) *Planner {
	if step <= 0 {
		step = time.Hour
	}
	return &Planner{
		engine:   engine,
		weather:  weather,
		notifier: notifier,
		rotation: rotation,
		step:     step,
		now:      time.Now,
		cases:    make(map[uuid.UUID]*Entry),
	}
}

// origin is the earliest known position of the object
func origin(doc sar.Document) (latlon.LatLon, time.Time) {
	pos, t := doc.Case.LKP, doc.Case.LKPTime
	if doc.Kind == sar.DatumLine && len(doc.Line) > 0 {
		pos, t = doc.Line[0].Position, doc.Line[0].Time
		for _, lp := range doc.Line[1:] {
			if lp.Time.Before(t) {
				pos, t = lp.Position, lp.Time
			}
		}
	}
	return pos, t
}

// Request builds the request of doc, sampling the forecast when doc comes
// without weather
func (p *Planner) Request(doc sar.Document) (sar.Request, error) {
	if len(doc.Weather) == 0 && p.weather != nil {
		pos, from := origin(doc)
		if doc.Case.CSS.Before(from) {
			return sar.Request{}, sarerr.Invalid("commence search time %s is before the last known position time %s", doc.Case.CSS.Format(time.RFC3339), from.Format(time.RFC3339))
		}
		samples, err := p.weather.Series(pos, from, doc.Case.CSS, p.step)
		if err != nil {
			return sar.Request{}, errors.WithMessage(err, "sampling weather")
		}
		doc.Weather = samples
	}
	return doc.Request(p.rotation)
}

// Plan plans doc once
func (p *Planner) Plan(doc sar.Document) (*sar.Plan, error) {
	req, err := p.Request(doc)
	if err != nil {
		return nil, err
	}
	return p.engine.Plan(req)
}

// Preview plans doc at later commence search times, the forecast being
// sampled up to the latest one
func (p *Planner) Preview(doc sar.Document, offsets ...time.Duration) ([]sar.Snapshot, error) {
	latest := time.Duration(0)
	for _, o := range offsets {
		latest = max(latest, o)
	}
	if len(offsets) == 0 {
		for _, o := range sar.PreviewOffsets {
			latest = max(latest, o)
		}
	}

	if len(doc.Weather) == 0 && p.weather != nil {
		ahead := doc
		ahead.Case.CSS = doc.Case.CSS.Add(latest)
		req, err := p.Request(ahead)
		if err != nil {
			return nil, err
		}
		doc.Weather = req.Weather
	}

	req, err := p.Request(doc)
	if err != nil {
		return nil, err
	}
	return p.engine.Preview(req, offsets...)
}

// Register plans doc and keeps it for the scheduled refreshes. Cases that do
// not plan are not registered.
func (p *Planner) Register(doc sar.Document) (Entry, error) {
	plan, err := p.Plan(doc)
	if err != nil {
		return Entry{}, err
	}

	now := p.now()
	e := &Entry{
		ID:         uuid.New(),
		Document:   doc,
		Registered: now,
		Updated:    now,
		Plan:       plan,
	}

	p.lock.Lock()
	p.cases[e.ID] = e
	p.lock.Unlock()

	log.WithFields(log.Fields{"id": e.ID, "case": doc.Case.CaseID, "kind": doc.Kind}).Info("Register case")
	return *e, nil
}

func (p *Planner) Get(id uuid.UUID) (Entry, bool) {
	p.lock.RLock()
	defer p.lock.RUnlock()

	e, found := p.cases[id]
	if !found {
		return Entry{}, false
	}
	return *e, true
}

func (p *Planner) Remove(id uuid.UUID) bool {
	p.lock.Lock()
	defer p.lock.Unlock()

	if _, found := p.cases[id]; !found {
		return false
	}
	delete(p.cases, id)
	log.WithField("id", id).Info("Remove case")
	return true
}

// List returns the active cases, oldest first
func (p *Planner) List() []Entry {
	p.lock.RLock()
	defer p.lock.RUnlock()

	entries := make([]Entry, 0, len(p.cases))
	for _, e := range p.cases {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Registered.Equal(entries[j].Registered) {
			return entries[i].ID.String() < entries[j].ID.String()
		}
		return entries[i].Registered.Before(entries[j].Registered)
	})
	return entries
}

// Refresh plans every active case again with the search starting now, or at
// its own commence search time when that is still ahead
func (p *Planner) Refresh() {
	now := p.now()

	for _, e := range p.List() {
		doc := e.Document
		if now.After(doc.Case.CSS) {
			doc.Case.CSS = now
		}

		fields := log.Fields{"id": e.ID, "case": doc.Case.CaseID, "css": doc.Case.CSS}
		plan, err := p.Plan(doc)

		p.lock.Lock()
		current, found := p.cases[e.ID]
		if found {
			current.Updated = now
			if err != nil {
				current.Error = err.Error()
			} else {
				current.Plan, current.Error = plan, ""
			}
		}
		p.lock.Unlock()

		if !found {
			continue
		}
		if err != nil {
			log.WithFields(fields).WithError(err).Error("Error planning case")
			p.notify(fmt.Sprintf("SAR case %s (%s): planning failed at %s: %v", doc.Case.CaseID, e.ID, doc.Case.CSS.Format(time.RFC3339), err))
			continue
		}
		if w := plan.Warning(); w != nil {
			log.WithFields(fields).WithError(w).Warn("Best effort search box")
			p.notify(fmt.Sprintf("SAR case %s (%s): best effort search box at %s: %v", doc.Case.CaseID, e.ID, doc.Case.CSS.Format(time.RFC3339), w))
			continue
		}
		log.WithFields(fields).Debug("Case planned")
	}
}

func (p *Planner) notify(message string) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.Send(message); err != nil {
		log.WithError(err).Warn("Error sending notification")
	}
}

// Start refreshes the active cases every interval. Send true on the returned
// channel to stop.
func (p *Planner) Start(interval time.Duration) chan bool {
	seconds := uint64(interval.Seconds())
	if seconds == 0 {
		seconds = 60
	}
	s := gocron.NewScheduler()
	s.Every(seconds).Seconds().Do(p.Refresh)

	log.WithField("interval", interval).Info("Start case planner")
	return s.Start()
}
