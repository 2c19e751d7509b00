package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a-bouts/sar-server/sarerr"
)

func environ(vars ...string) func() []string {
	return func() []string { return vars }
}

func write(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := load("", environ())
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 8888, cfg.HTTP.Port)
	assert.Equal(t, 180.0, cfg.Drift.Rotation)
	assert.Len(t, cfg.Preview.Offsets, 8)
}

func TestFileAndEnv(t *testing.T) {
	path := write(t, `
http:
  port: 9000
log:
  level: debug
grib:
  dir: /data/grib
  step: 30m
planner:
  interval: 5m
preview:
  offsets: [1h, 2h]
xmpp:
  jid: planner@mrcc.example.org
  to: duty@mrcc.example.org
`)

	cfg, err := load(path, environ(
		"SAR_HTTP_PORT=9100",
		"SAR_XMPP_PASSWORD=secret",
		"SAR_DRIFT_ROTATION=175",
		"HOME=/root",
	))
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.HTTP.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/data/grib", cfg.Grib.Dir)
	assert.Equal(t, 30*time.Minute, cfg.Grib.Step)
	assert.Equal(t, 15*time.Second, cfg.Grib.Reload)
	assert.Equal(t, 5*time.Minute, cfg.Planner.Interval)
	assert.Equal(t, []time.Duration{time.Hour, 2 * time.Hour}, cfg.Preview.Offsets)
	assert.Equal(t, 175.0, cfg.Drift.Rotation)
	assert.Equal(t, "planner@mrcc.example.org", cfg.Xmpp.Jid)
	assert.Equal(t, "secret", cfg.Xmpp.Password)
}

func TestEnvOffsets(t *testing.T) {
	cfg, err := load("", environ("SAR_PREVIEW_OFFSETS=15m,45m"))
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{15 * time.Minute, 45 * time.Minute}, cfg.Preview.Offsets)
}

func TestInvalid(t *testing.T) {
	for _, vars := range [][]string{
		{"SAR_HTTP_PORT=0"},
		{"SAR_DRIFT_ROTATION=360"},
		{"SAR_PLANNER_INTERVAL=10s"},
		{"SAR_LOG_LEVEL=verbose"},
	} {
		_, err := load("", environ(vars...))
		assert.True(t, errors.Is(err, ErrInvalidConfig), "%v: %v", vars, err)
		assert.Nil(t, sarerr.Class(err), "%v: %v", vars, err)
	}

	_, err := load(filepath.Join(t.TempDir(), "missing.yaml"), environ())
	assert.Error(t, err)
}
