// Package wind reads GRIB2 forecasts of 10 m wind and surface current and
// samples them into drift weather series.
package wind

import (
	"math"
	"os"
	"time"

	"github.com/nilsmagnus/grib/griblib"
	"github.com/pkg/errors"

	"github.com/a-bouts/sar-server/sarerr"
)

// Grid is one u/v field on a regular lat/lon grid, in m/s. ΔLat is negative
// when the rows run from north to south.
type Grid struct {
	Lat0 float64
	Lon0 float64
	ΔLat float64
	ΔLon float64
	NLat uint32
	NLon uint32
	U    [][]float64
	V    [][]float64
}

// Forecast is the content of one GRIB file, valid at Date
type Forecast struct {
	Date    time.Time
	File    string
	Wind    *Grid
	Current *Grid
}

const (
	disciplineMeteo    = 0
	disciplineOcean    = 10
	categoryMomentum   = 2
	categoryCurrents   = 1
	surfaceAboveGround = 103
	paramU             = 2
	paramV             = 3
)

func (g *Grid) buildGrid(data []float64) [][]float64 {

	isContinuous := math.Floor(float64(g.NLon)*g.ΔLon) >= 360

	nLon := g.NLon
	if isContinuous {
		nLon++
	}

	grid := make([][]float64, g.NLat)

	p := 0
	for j := uint32(0); j < g.NLat; j++ {
		grid[j] = make([]float64, nLon)
		for i := uint32(0); i < g.NLon; i++ {
			grid[j][i] = data[p]
			p++
		}
		if isContinuous {
			grid[j][g.NLon] = grid[j][0]
		}
	}
	return grid
}

func (g *Grid) set(grid0 *griblib.Grid0, param int, data []float64) {
	g.Lat0 = float64(grid0.La1) / 1e6
	g.Lon0 = float64(grid0.Lo1) / 1e6
	g.ΔLat = float64(grid0.Dj) / 1e6
	g.ΔLon = float64(grid0.Di) / 1e6
	if grid0.La2 < grid0.La1 {
		g.ΔLat = -g.ΔLat
	}
	g.NLat = grid0.Nj
	g.NLon = grid0.Ni
	if param == paramU {
		g.U = g.buildGrid(data)
	} else {
		g.V = g.buildGrid(data)
	}
}

func (g *Grid) complete() bool {
	return g != nil && g.U != nil && g.V != nil
}

// Read loads the wind and current fields of a GRIB file. Files with neither
// field are rejected.
func Read(date time.Time, path string) (Forecast, error) {
	f := Forecast{Date: date, File: path}

	gribfile, err := os.Open(path)
	if err != nil {
		return f, errors.Wrapf(err, "open grib file '%s'", path)
	}
	defer gribfile.Close()

	messages, err := griblib.ReadMessages(gribfile)
	if err != nil {
		return f, errors.Wrapf(err, "read grib file '%s'", path)
	}

	wind, current := &Grid{}, &Grid{}
	for _, message := range messages {
		product := message.Section4.ProductDefinitionTemplate
		param := int(product.ParameterNumber)
		if param != paramU && param != paramV {
			continue
		}
		grid0, ok := message.Section3.Definition.(*griblib.Grid0)
		if !ok {
			continue
		}
		switch {
		case message.Section0.Discipline == disciplineMeteo && product.ParameterCategory == categoryMomentum &&
			product.FirstSurface.Type == surfaceAboveGround && product.FirstSurface.Value == 10:
			wind.set(grid0, param, message.Section7.Data)
		case message.Section0.Discipline == disciplineOcean && product.ParameterCategory == categoryCurrents:
			current.set(grid0, param, message.Section7.Data)
		}
	}

	if wind.complete() {
		f.Wind = wind
	}
	if current.complete() {
		f.Current = current
	}
	if f.Wind == nil && f.Current == nil {
		return f, errors.Wrapf(sarerr.ErrLookup, "no wind nor current in grib file '%s'", path)
	}
	return f, nil
}

func floorMod(a float64, n float64) float64 {
	return a - n*math.Floor(a/n)
}

func bilinearInterpolate(x float64, y float64, g00 []float64, g10 []float64, g01 []float64, g11 []float64) (float64, float64) {

	rx := (1 - x)
	ry := (1 - y)

	a := rx * ry
	b := x * ry
	c := rx * y
	d := x * y

	u := g00[0]*a + g10[0]*b + g01[0]*c + g11[0]*d
	v := g00[1]*a + g10[1]*b + g01[1]*c + g11[1]*d

	return u, v
}

// interpolate returns the u/v components at lat/lon, false outside the grid
func (g *Grid) interpolate(lat float64, lon float64) (float64, float64, bool) {

	i := (lat - g.Lat0) / g.ΔLat
	j := floorMod(lon-g.Lon0, 360.0) / g.ΔLon

	if i < 0 || int(i)+1 >= len(g.U) || int(j)+1 >= len(g.U[int(i)]) {
		return 0, 0, false
	}

	fi := uint32(i)
	fj := uint32(j)

	u00 := g.U[fi][fj]
	v00 := g.V[fi][fj]

	u01 := g.U[fi+1][fj]
	v01 := g.V[fi+1][fj]

	u10 := g.U[fi][fj+1]
	v10 := g.V[fi][fj+1]

	u11 := g.U[fi+1][fj+1]
	v11 := g.V[fi+1][fj+1]

	u, v := bilinearInterpolate(j-float64(fj), i-float64(fi), []float64{u00, v00}, []float64{u10, v10}, []float64{u01, v01}, []float64{u11, v11})

	return u, v, true
}

// at blends the fields of two forecasts, h being the fraction of the way
// from f1 to f2. f2 may be nil.
func at(f1 *Grid, f2 *Grid, lat float64, lon float64, h float64) (float64, float64, bool) {
	u, v, ok := f1.interpolate(lat, lon)
	if !ok {
		return 0, 0, false
	}
	if f2 != nil {
		u2, v2, ok := f2.interpolate(lat, lon)
		if ok {
			u = u2*h + u*(1-h)
			v = v2*h + v*(1-h)
		}
	}
	return u, v, true
}
