package config

import (
	"os"

	"github.com/jsphweid/scoreflow/constants"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

type Config struct {
	OutDir         string `yaml:"out_dir"`
	LogLevel       string `yaml:"log_level"`
	PedalThreshold int    `yaml:"pedal_threshold"`
	Export         Export `yaml:"export"`
	Serve          Serve  `yaml:"serve"`
}

type Export struct {
	AttributesFirst bool `yaml:"attributes_first"`
	AnyAnchor       bool `yaml:"any_anchor"`
	Workers         int  `yaml:"workers"`
}

type Serve struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

func Default() Config {
	return Config{
		OutDir:         "./out",
		LogLevel:       "info",
		PedalThreshold: constants.DefaultPedalThreshold,
		Serve:          Serve{Addr: constants.ServeAddr},
	}
}

// Load reads the YAML file at path over the defaults, then applies the
// environment. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrap(err, "could not read config")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "could not parse config %s", path)
		}
	}

	if os.Getenv("SCOREFLOW_OUT_DIR") != "" {
		cfg.OutDir = constants.GetOutDir()
	}
	if threshold, ok := constants.GetPedalThreshold(); ok {
		cfg.PedalThreshold = threshold
	}
	if level := constants.GetLogLevel(); level != "" {
		cfg.LogLevel = level
	}
	return cfg, nil
}
