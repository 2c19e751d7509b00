package model

import (
	"github.com/a-bouts/sar-server/tables"
)

type Health struct {
	Status string `json:"status"`
	// loaded forecasts
	Forecasts int `json:"forecasts"`
	Cases     int `json:"cases"`
}

type Error struct {
	Error string `json:"error"`
	Class string `json:"class,omitempty"`
}

// LeewayType is a leeway table row with its divergence angle
type LeewayType struct {
	tables.Leeway
	Divergence float64 `json:"divergence"`
}

type SweepRow struct {
	Code   int     `json:"code"`
	Name   string  `json:"name"`
	Small  bool    `json:"small"`
	Widths []Width `json:"widths"`
}

type Width struct {
	Visibility int     `json:"visibility"`
	Width      float64 `json:"width"`
}

type SweepTable struct {
	Searcher tables.Searcher `json:"searcher"`
	Rows     []SweepRow      `json:"rows"`
}

// LeewayTypes joins the leeway and divergence tables
func LeewayTypes() []LeewayType {
	types := tables.LeewayTypes()
	res := make([]LeewayType, 0, len(types))
	for _, l := range types {
		d, _ := tables.Divergence(l.Code)
		res = append(res, LeewayType{Leeway: l, Divergence: d})
	}
	return res
}

// SweepTables lists the sweep widths of both searcher classes by target
func SweepTables() []SweepTable {
	var res []SweepTable
	for _, s := range []tables.Searcher{tables.SmallerVessel, tables.Ship} {
		rows := tables.SweepWidthRows(s)
		t := SweepTable{Searcher: s}
		for _, target := range tables.Targets() {
			r := SweepRow{Code: target.Code, Name: target.Name, Small: target.Small}
			for _, w := range rows[target.Code] {
				r.Widths = append(r.Widths, Width{Visibility: int(w[0]), Width: w[1]})
			}
			t.Rows = append(t.Rows, r)
		}
		res = append(res, t)
	}
	return res
}
