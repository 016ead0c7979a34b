package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/reoring/nonesafe"
	"github.com/reoring/nonesafe/internal/schemafile"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

// app carries state resolved once by the root command for its subcommands.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	cfg        *viper.Viper
	log        zerolog.Logger
	schemaPath string
	schemas    *schemafile.Set
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr, log: zerolog.Nop()}

	root := &cobra.Command{
		Use:           "nonesafe",
		Short:         "Fill JSON/YAML data so every declared field is present",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup(cmd)
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default: ./.nonesafe.yaml)")
	pf.String("schema", "", "schema document declaring record types")
	pf.String("log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	pf.String("driver", defaultDriver, "JSON driver (go-json, encoding/json)")
	pf.Int64("max-bytes", 0, "reject inputs larger than this many bytes (0: unlimited)")
	pf.Int("max-depth", 0, "reject inputs nested deeper than this (0: unlimited)")
	pf.String("duplicate-keys", defaultDuplicates, "duplicate JSON keys: ignore, warn or error")

	root.AddCommand(a.fillCmd(), a.showCmd(), a.schemaCmd(), a.serveCmd(), versionCmd())
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd, a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	log, err := newLogger(a.stderr, cfg.GetString(cfgKeyLogLevel))
	if err != nil {
		return err
	}
	a.log = log

	if err := applyDriver(cfg.GetString(cfgKeyDriver)); err != nil {
		return err
	}
	a.log.Debug().Str("driver", nonesafe.CurrentJSONDriver().Name()).Msg("json driver selected")

	path := cfg.GetString(cfgKeySchema)
	if path == "" {
		return errors.New("no schema document: pass --schema or set schema in the config file")
	}
	set, err := schemafile.LoadFile(path)
	if err != nil {
		return err
	}
	a.schemaPath = path
	a.schemas = set
	a.log.Debug().Str("schema", path).Strs("types", set.Names()).Msg("schema loaded")
	return nil
}

func (a *app) recordType(name string) (*nonesafe.RecordType, error) {
	if name == "" {
		return nil, errors.New("--type is required")
	}
	t, ok := a.schemas.Type(name)
	if !ok {
		return nil, fmt.Errorf("type %q is not declared (have %v)", name, a.schemas.Names())
	}
	return t, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "nonesafe %s\n", Version)
		},
	}
}
