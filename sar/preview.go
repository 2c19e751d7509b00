package sar

import (
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// PreviewOffsets are the commence search time offsets of a preview
var PreviewOffsets = []time.Duration{
	30 * time.Minute,
	60 * time.Minute,
	90 * time.Minute,
	120 * time.Minute,
	150 * time.Minute,
	180 * time.Minute,
	210 * time.Minute,
	240 * time.Minute,
}

// Snapshot is the plan of a case had the search started Offset later
type Snapshot struct {
	Offset time.Duration `json:"offset"`
	CSS    time.Time     `json:"css"`
	Plan   *Plan         `json:"plan"`
}

// Preview plans req again for each commence search time offset, PreviewOffsets
// when none is given. Runs are independent and share only the weather.
func (e Engine) Preview(req Request, offsets ...time.Duration) ([]Snapshot, error) {
	if err := e.validate(req); err != nil {
		return nil, err
	}
	if len(offsets) == 0 {
		offsets = PreviewOffsets
	}

	css := req.Case.Common().CSS
	snapshots := make([]Snapshot, len(offsets))

	var g errgroup.Group
	for i, offset := range offsets {
		i, offset := i, offset
		g.Go(func() error {
			r := req
			r.Case = req.Case.at(css.Add(offset))
			plan, err := e.Plan(r)
			if err != nil {
				return errors.WithMessagef(err, "preview at +%s", offset)
			}
			snapshots[i] = Snapshot{Offset: offset, CSS: css.Add(offset), Plan: plan}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snapshots, nil
}
