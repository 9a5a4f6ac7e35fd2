package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".tcompare"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for tcompare settings.
const envPrefix = "TCOMPARE"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("alpha", DefaultAlpha)
	viperCfg.SetDefault("discrepancy", DefaultDiscrepancy)
	viperCfg.SetDefault("skip", DefaultSkip)
	viperCfg.SetDefault("verbose", DefaultVerbose)
	viperCfg.SetDefault("format", DefaultFormat)

	viperCfg.SetDefault("input.format", DefaultInputFormat)
	viperCfg.SetDefault("input.default_n", DefaultSampleCount)

	viperCfg.SetDefault("plot.kind", DefaultPlotKind)
	viperCfg.SetDefault("plot.output", DefaultPlotOutput)
	viperCfg.SetDefault("plot.reject_only", DefaultPlotRejectOnly)
}
