package tables

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/a-bouts/sar-server/sarerr"
)

// Searcher is the class of the searching platform
type Searcher int

const (
	SmallerVessel Searcher = iota
	Ship
)

func (s Searcher) String() string {
	switch s {
	case SmallerVessel:
		return "smaller-vessel"
	case Ship:
		return "ship"
	}
	return fmt.Sprintf("searcher(%d)", int(s))
}

// ParseSearcher accepts "smaller-vessel" or "ship"
func ParseSearcher(s string) (Searcher, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "smaller-vessel", "smaller_vessel", "smallervessel", "small":
		return SmallerVessel, nil
	case "ship":
		return Ship, nil
	}
	return 0, errors.Wrapf(sarerr.ErrInputValidation, "unknown searcher class '%s'", s)
}

func (s Searcher) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Searcher) UnmarshalText(b []byte) error {
	v, err := ParseSearcher(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Visibilities are the meteorological visibilities (nm) the sweep width
// tables are indexed by
var Visibilities = []int{1, 3, 5, 10, 15, 20}

// Target describes a search object of the sweep width tables
type Target struct {
	Code int    `json:"code"`
	Name string `json:"name"`
	// Small selects the "PIW & small boats" row of the weather correction
	Small bool `json:"small"`
}

var targets = [...]Target{
	{0, "Person in water", true},
	{1, "Raft 1 person", true},
	{2, "Raft 4 person", true},
	{3, "Raft 6 person", true},
	{4, "Raft 8 person", true},
	{5, "Raft 10 person", true},
	{6, "Raft 15 person", true},
	{7, "Raft 20 person", true},
	{8, "Raft 25 person", true},
	{9, "Power boat 15 ft (5 m)", true},
	{10, "Power boat 20 ft (6 m)", true},
	{11, "Power boat 33 ft (10 m)", false},
	{12, "Power boat 53 ft (16 m)", false},
	{13, "Power boat 78 ft (24 m)", false},
	{14, "Sail boat 15 ft (5 m)", true},
	{15, "Sail boat 20 ft (6 m)", true},
	{16, "Sail boat 25 ft (8 m)", true},
	{17, "Sail boat 30 ft (9 m)", true},
	{18, "Sail boat 40 ft (12 m)", false},
	{19, "Sail boat 50 ft (15 m)", false},
	{20, "Sail boat 70 ft (21 m)", false},
	{21, "Sail boat 83 ft (25 m)", false},
	{22, "Ship 120 ft (37 m)", false},
	{23, "Ship 225 ft (69 m)", false},
	{24, "Ship 300 ft (91 m)", false},
}

type sweepRow map[int]float64

func row(widths ...float64) sweepRow {
	r := make(sweepRow, len(widths))
	vis := Visibilities[len(Visibilities)-len(widths):]
	for i, w := range widths {
		r[vis[i]] = w
	}
	return r
}

// sweepWidths[searcher][target][visibility] is the uncorrected sweep width in nm
var sweepWidths = map[Searcher]map[int]sweepRow{
	SmallerVessel: {
		0:  row(0.4, 0.5, 0.5, 0.5, 0.5, 0.5),
		1:  row(0.7, 1.3, 1.7, 2.3, 2.6, 2.7),
		2:  row(0.7, 1.7, 2.2, 3.1, 3.5, 3.8),
		3:  row(0.8, 1.9, 2.6, 3.6, 4.3, 4.7),
		4:  row(0.8, 2.0, 2.7, 3.8, 4.4, 4.8),
		5:  row(0.8, 2.0, 2.8, 4.0, 4.8, 5.1),
		6:  row(0.9, 2.2, 3.0, 4.3, 5.1, 5.6),
		7:  row(0.9, 2.3, 3.3, 4.9, 5.8, 6.5),
		8:  row(0.9, 2.4, 3.5, 5.2, 6.2, 6.9),
		9:  row(0.5, 1.1, 1.4, 1.9, 2.1, 2.3),
		10: row(0.7, 1.8, 2.4, 3.4, 4.0, 4.4),
		11: row(0.8, 2.2, 3.3, 5.1, 6.2, 6.9),
		12: row(0.9, 3.0, 4.6, 7.4, 9.3, 10.6),
		13: row(0.9, 3.4, 5.4, 9.2, 11.7, 13.6),
		14: row(0.8, 1.9, 2.4, 3.3, 3.8, 4.1),
		15: row(0.8, 2.2, 2.9, 4.1, 4.8, 5.3),
		16: row(0.9, 2.4, 3.2, 4.6, 5.5, 6.1),
		17: row(0.9, 2.7, 3.7, 5.4, 6.5, 7.2),
		18: row(0.9, 3.0, 4.2, 6.3, 7.7, 8.6),
		19: row(0.9, 3.1, 4.4, 6.7, 8.2, 9.2),
		20: row(0.9, 3.2, 4.7, 7.2, 8.8, 10.0),
		21: row(0.9, 3.3, 4.9, 7.7, 9.5, 10.8),
		22: row(0.9, 3.4, 5.6, 10.7, 14.7, 18.1),
		23: row(0.9, 3.6, 6.0, 11.6, 16.1, 19.9),
		24: row(0.9, 3.6, 6.1, 12.1, 16.7, 20.8),
	},
	// no 1 nm column for ships
	Ship: {
		0:  row(0.7, 0.7, 0.9, 0.9, 0.9),
		1:  row(2.3, 3.1, 4.0, 4.5, 4.8),
		2:  row(2.6, 3.6, 4.8, 5.6, 6.0),
		3:  row(2.8, 3.9, 5.2, 6.1, 6.6),
		4:  row(2.9, 4.1, 5.4, 6.3, 6.8),
		5:  row(3.0, 4.2, 5.6, 6.5, 7.1),
		6:  row(3.2, 4.4, 5.9, 6.9, 7.5),
		7:  row(3.4, 4.8, 6.5, 7.6, 8.3),
		8:  row(3.5, 5.0, 6.8, 8.0, 8.7),
		9:  row(1.5, 2.2, 2.9, 3.3, 3.5),
		10: row(2.6, 3.7, 5.0, 5.7, 6.1),
		11: row(3.3, 4.8, 6.7, 8.0, 8.7),
		12: row(4.4, 6.6, 9.4, 11.2, 12.4),
		13: row(5.0, 7.6, 11.1, 13.4, 15.0),
		14: row(2.8, 3.9, 5.2, 6.0, 6.4),
		15: row(3.2, 4.6, 6.2, 7.2, 7.8),
		16: row(3.5, 5.0, 6.8, 8.0, 8.7),
		17: row(3.8, 5.5, 7.6, 9.0, 9.8),
		18: row(4.2, 6.2, 8.6, 10.3, 11.3),
		19: row(4.4, 6.4, 9.0, 10.8, 11.9),
		20: row(4.6, 6.8, 9.6, 11.6, 12.9),
		21: row(4.7, 7.0, 10.0, 12.2, 13.5),
		22: row(5.1, 7.9, 13.2, 17.7, 21.5),
		23: row(5.3, 8.3, 14.2, 19.2, 23.5),
		24: row(5.3, 8.4, 14.6, 19.9, 24.4),
	},
}

// Targets returns a copy of the sweep width object table
func Targets() []Target {
	res := make([]Target, len(targets))
	copy(res, targets[:])
	return res
}

// TargetFor returns the sweep width object of code
func TargetFor(code int) (Target, error) {
	if code < 0 || code >= len(targets) {
		return Target{}, errors.Wrapf(sarerr.ErrInputValidation, "sweep width object type %d outside 0-%d", code, len(targets)-1)
	}
	return targets[code], nil
}

// SweepWidth returns the uncorrected sweep width (nm) of target code searched
// by searcher at the given visibility (nm)
func SweepWidth(searcher Searcher, code int, visibility int) (float64, error) {
	if _, err := TargetFor(code); err != nil {
		return 0, err
	}
	rows, found := sweepWidths[searcher]
	if !found {
		return 0, errors.Wrapf(sarerr.ErrLookup, "no sweep width table for %s", searcher)
	}
	w, found := rows[code][visibility]
	if !found {
		return 0, errors.Wrapf(sarerr.ErrLookup, "no sweep width for %s, object %d, visibility %d nm", searcher, code, visibility)
	}
	return w, nil
}

// SweepWidthRows returns the sweep widths of searcher by target code, with
// the visibilities of each row in increasing order
func SweepWidthRows(searcher Searcher) map[int][][2]float64 {
	res := make(map[int][][2]float64, len(sweepWidths[searcher]))
	for code, r := range sweepWidths[searcher] {
		vis := make([]int, 0, len(r))
		for v := range r {
			vis = append(vis, v)
		}
		sort.Ints(vis)
		for _, v := range vis {
			res[code] = append(res[code], [2]float64{float64(v), r[v]})
		}
	}
	return res
}
