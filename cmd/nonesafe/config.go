package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/reoring/nonesafe"
	"github.com/reoring/nonesafe/source/gojson"
)

const (
	configFileName = ".nonesafe"
	configFileType = "yaml"
	envPrefix      = "NONESAFE"

	cfgKeySchema     = "schema"
	cfgKeyLogLevel   = "log_level"
	cfgKeyDriver     = "driver"
	cfgKeyMaxBytes   = "max_bytes"
	cfgKeyMaxDepth   = "max_depth"
	cfgKeyDuplicates = "duplicate_keys"

	defaultLogLevel   = "warn"
	defaultDriver     = "go-json"
	defaultDuplicates = "warn"
)

// loadConfig layers flags over NONESAFE_* env over the config file over
// defaults. A missing config file is not an error.
func loadConfig(cmd *cobra.Command, path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyDriver, defaultDriver)
	v.SetDefault(cfgKeyDuplicates, defaultDuplicates)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	flags := cmd.Flags()
	for key, flag := range map[string]string{
		cfgKeySchema:     "schema",
		cfgKeyLogLevel:   "log-level",
		cfgKeyDriver:     "driver",
		cfgKeyMaxBytes:   "max-bytes",
		cfgKeyMaxDepth:   "max-depth",
		cfgKeyDuplicates: "duplicate-keys",
	} {
		if f := flags.Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", flag, err)
			}
		}
	}
	return v, nil
}

func newLogger(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level %q: %w", level, err)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).Level(lvl).With().Timestamp().Logger(), nil
}

// applyDriver selects the JSON driver used by nonesafe.JSONReader.
func applyDriver(name string) error {
	switch name {
	case "go-json", "gojson", "":
		nonesafe.SetJSONDriver(gojson.Driver())
		return nil
	case "encoding/json", "std":
		nonesafe.UseDefaultJSONDriver()
		return nil
	}
	return fmt.Errorf("unknown JSON driver %q (want go-json or encoding/json)", name)
}

func parseOptFrom(v *viper.Viper) (nonesafe.ParseOpt, error) {
	opt := nonesafe.ParseOpt{
		MaxBytes: v.GetInt64(cfgKeyMaxBytes),
		MaxDepth: v.GetInt(cfgKeyMaxDepth),
	}
	switch d := v.GetString(cfgKeyDuplicates); d {
	case "ignore":
		opt.Strictness.OnDuplicateKey = nonesafe.Ignore
	case "warn", "":
		opt.Strictness.OnDuplicateKey = nonesafe.Warn
	case "error":
		opt.Strictness.OnDuplicateKey = nonesafe.Error
	default:
		return opt, fmt.Errorf("duplicate_keys %q: want ignore, warn or error", d)
	}
	return opt, nil
}
