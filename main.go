package main

import (
	"flag"
	"net/http"
	"os"
	"strconv"

	"github.com/peterbourgon/ff"
	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/sar-server/api"
	"github.com/a-bouts/sar-server/config"
	"github.com/a-bouts/sar-server/land"
	"github.com/a-bouts/sar-server/planner"
	"github.com/a-bouts/sar-server/sar"
	"github.com/a-bouts/sar-server/wind"
	"github.com/a-bouts/sar-server/xmpp"
)

func main() {

	fs := flag.NewFlagSet("sar-server", flag.ExitOnError)
	var (
		configFile   = fs.String("config", "", "yaml configuration file")
		port         = fs.Int("port", 0, "http port, overrides the configuration")
		debug        = fs.Bool("debug", false, "debug logs")
		cpuprofile   = fs.Bool("cpuprofile", false, "profile the plan requests")
		xmppHost     = fs.String("xmpp-host", "", "")
		xmppJid      = fs.String("xmpp-jid", "", "")
		xmppPassword = fs.String("xmpp-password", "", "")
		xmppTo       = fs.String("xmpp-to", "", "")
	)
	ff.Parse(fs, os.Args[1:], ff.WithEnvVarNoPrefix())

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.WithError(err).Fatal("Error loading configuration")
	}
	if *port > 0 {
		cfg.HTTP.Port = *port
	}
	for dst, flagValue := range map[*string]string{
		&cfg.Xmpp.Host:     *xmppHost,
		&cfg.Xmpp.Jid:      *xmppJid,
		&cfg.Xmpp.Password: *xmppPassword,
		&cfg.Xmpp.To:       *xmppTo,
	} {
		if flagValue != "" {
			*dst = flagValue
		}
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}
	if *debug {
		level = log.DebugLevel
	}
	log.SetLevel(level)

	var engine sar.Engine

	log.Info("Load lands")
	if l, err := land.Load(cfg.Land.File); err != nil {
		log.WithError(err).Warn("Waypoints will not be checked against land")
	} else {
		engine.Land = l
	}

	log.WithField("dir", cfg.Grib.Dir).Info("Load forecasts")
	winds := wind.InitWinds(cfg.Grib.Dir, cfg.Grib.Reload)

	var notifier planner.Notifier
	if x := (xmpp.Xmpp{Config: cfg.Xmpp}); x.Enabled() {
		notifier = x
	} else {
		log.Info("No xmpp alerts")
	}

	p := planner.New(engine, winds, notifier, cfg.Drift.Rotation, cfg.Grib.Step)
	p.Start(cfg.Planner.Interval)

	router, err := api.InitServer(*cpuprofile, engine, p, winds, cfg.Preview.Offsets, cfg.Cache.Size)
	if err != nil {
		log.WithError(err).Fatal("Error creating server")
	}

	log.WithField("port", cfg.HTTP.Port).Info("Start server")
	log.Fatal(http.ListenAndServe(":"+strconv.Itoa(cfg.HTTP.Port), router))
}
