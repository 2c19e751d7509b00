// Command sarplan plans a case described in a YAML document and prints the
// plan as JSON or GeoJSON.
package main

import (
	"encoding/json"
	"flag"
	"io"
	"os"
	"time"

	"github.com/peterbourgon/ff"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/a-bouts/sar-server/api/model"
	"github.com/a-bouts/sar-server/drift"
	"github.com/a-bouts/sar-server/planner"
	"github.com/a-bouts/sar-server/sar"
	"github.com/a-bouts/sar-server/sarerr"
	"github.com/a-bouts/sar-server/wind"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		log.WithError(err).Error("Planning failed")
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("sarplan", flag.ContinueOnError)
	var (
		format   = fs.String("format", "json", "json or geojson")
		grib     = fs.String("grib", "", "GRIB directory sampled when the document has no weather")
		step     = fs.Duration("step", time.Hour, "weather sampling step")
		rotation = fs.Float64("rotation", drift.DefaultRotation, "wind heading to downwind rotation")
		preview  = fs.Bool("preview", false, "plan again at later commence search times")
		debug    = fs.Bool("debug", false, "debug logs")
	)
	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("SARPLAN")); err != nil {
		return err
	}

	if *format != "json" && *format != "geojson" {
		return sarerr.Invalid("unknown format '%s'", *format)
	}

	log.SetOutput(os.Stderr)
	log.SetLevel(log.WarnLevel)
	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	in := stdin
	if fs.NArg() > 0 {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			return errors.Wrap(err, "open request")
		}
		defer f.Close()
		in = f
	}

	var doc sar.Document
	if err := yaml.NewDecoder(in).Decode(&doc); err != nil {
		return errors.Wrap(sarerr.ErrInputValidation, err.Error())
	}

	var weather planner.Weather
	if *grib != "" {
		weather = wind.NewWinds(*grib)
	}
	p := planner.New(sar.Engine{}, weather, nil, *rotation, *step)

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")

	if *preview {
		snapshots, err := p.Preview(doc)
		if err != nil {
			return err
		}
		return enc.Encode(snapshots)
	}

	plan, err := p.Plan(doc)
	if err != nil {
		return err
	}
	if w := plan.Warning(); w != nil {
		log.WithError(w).Warn("Best effort search box")
	}

	if *format == "geojson" {
		return enc.Encode(model.FeatureCollection(plan))
	}
	return enc.Encode(plan)
}
