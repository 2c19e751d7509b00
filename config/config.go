// Package config loads the server configuration from a YAML file overlaid
// with SAR_ prefixed environment variables.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"

	"github.com/a-bouts/sar-server/drift"
	"github.com/a-bouts/sar-server/sar"
	"github.com/a-bouts/sar-server/sarerr"
	"github.com/a-bouts/sar-server/xmpp"
)

const envPrefix = "SAR_"

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	HTTP struct {
		Port int `koanf:"port" validate:"gt=0,lte=65535"`
	} `koanf:"http"`

	Log struct {
		Level string `koanf:"level" validate:"oneof=debug info warn error"`
	} `koanf:"log"`

	Grib struct {
		Dir string `koanf:"dir"`
		// GRIB directory scan interval
		Reload time.Duration `koanf:"reload" validate:"gt=0"`
		// weather sampling step of the drift series
		Step time.Duration `koanf:"step" validate:"gt=0"`
	} `koanf:"grib"`

	Land struct {
		File string `koanf:"file"`
	} `koanf:"land"`

	Planner struct {
		Interval time.Duration `koanf:"interval" validate:"gte=1m"`
	} `koanf:"planner"`

	Drift struct {
		// wind heading to downwind bearing rotation
		Rotation float64 `koanf:"rotation" validate:"gte=0,lt=360"`
	} `koanf:"drift"`

	Preview struct {
		Offsets []time.Duration `koanf:"offsets" validate:"min=1,dive,gt=0"`
	} `koanf:"preview"`

	Cache struct {
		Size int `koanf:"size" validate:"gt=0"`
	} `koanf:"cache"`

	Xmpp xmpp.Config `koanf:"xmpp"`
}

// Default is the configuration used for everything a file or the environment
// does not set
func Default() *Config {
	cfg := &Config{}
	cfg.HTTP.Port = 8888
	cfg.Log.Level = "info"
	cfg.Grib.Dir = "grib-data"
	cfg.Grib.Reload = 15 * time.Second
	cfg.Grib.Step = time.Hour
	cfg.Land.File = "land/output"
	cfg.Planner.Interval = 10 * time.Minute
	cfg.Drift.Rotation = drift.DefaultRotation
	cfg.Preview.Offsets = append([]time.Duration(nil), sar.PreviewOffsets...)
	cfg.Cache.Size = 128
	return cfg
}

// Load reads path, if any, then the environment over the defaults
func Load(path string) (*Config, error) {
	return load(path, os.Environ)
}

func load(path string, environ func() []string) (*Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "read config '%s' failed", path)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			// SAR_GRIB_DIR -> grib.dir
			key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			return key, v
		},
		EnvironFunc: environ,
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			TagName:          "koanf",
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrap(err, "unmarshal config failed")
	}

	if err := sarerr.Validate(cfg); err != nil {
		return nil, errors.Wrap(ErrInvalidConfig, err.Error())
	}
	return cfg, nil
}
