package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/reoring/nonesafe"
)

type readFlags struct {
	typeName    string
	inputFormat string
}

func (f *readFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.typeName, "type", "t", "", "record type to construct (required)")
	cmd.Flags().StringVar(&f.inputFormat, "input-format", "auto", "input format: auto, json or yaml")
}

func (a *app) fillCmd() *cobra.Command {
	var rf readFlags
	var mode, output string
	cmd := &cobra.Command{
		Use:   "fill [file|-]",
		Short: "Print the input with every declared field present",
		Long: `Construct a record of --type from JSON or YAML input and print it.

Modes:
  canonical  declared fields only, unset scalars omitted
  preserve   declared fields over the original input, unknown keys kept
             (the type must be declared with preserving: true)
  full       declared fields only, unset scalars printed as null`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			em, ok := nonesafe.ParseEncodeMode(mode)
			if !ok {
				return fmt.Errorf("mode %q: want canonical, preserve or full", mode)
			}
			r, err := a.readRecord(cmd, rf, args)
			if err != nil {
				return err
			}
			m, err := nonesafe.Encode(r, em)
			if err != nil {
				return err
			}
			return writeOutput(a.stdout, output, m)
		},
	}
	rf.register(cmd)
	cmd.Flags().StringVarP(&mode, "mode", "m", "canonical", "output mode: canonical, preserve or full")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output format: json or yaml")
	return cmd
}

func (a *app) showCmd() *cobra.Command {
	var rf readFlags
	cmd := &cobra.Command{
		Use:   "show [file|-]",
		Short: "Print the constructed record as Name(field=value, ...)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.readRecord(cmd, rf, args)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.stdout, r.String())
			return err
		},
	}
	rf.register(cmd)
	return cmd
}

func (a *app) schemaCmd() *cobra.Command {
	var typeName string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of a declared record type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.recordType(typeName)
			if err != nil {
				return err
			}
			s, err := t.JSONSchema()
			if err != nil {
				return err
			}
			return writeOutput(a.stdout, "json", s)
		},
	}
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "record type (required)")
	return cmd
}

func (a *app) readRecord(cmd *cobra.Command, rf readFlags, args []string) (*nonesafe.Record, error) {
	t, err := a.recordType(rf.typeName)
	if err != nil {
		return nil, err
	}
	opt, err := parseOptFrom(a.cfg)
	if err != nil {
		return nil, err
	}
	opt.OnIssue = func(it nonesafe.Issue) {
		a.log.Warn().Str("code", it.Code).Str("path", it.Path).Msg(it.Message)
	}

	in, name, err := a.openInput(args)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	format, err := inputFormat(rf.inputFormat, name)
	if err != nil {
		return nil, err
	}
	a.log.Debug().Str("input", name).Str("format", format).Str("type", t.Name()).Msg("constructing record")

	ctx := cmd.Context()
	if format == "yaml" {
		data, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		return nonesafe.ParseYAML(ctx, t, data, opt)
	}
	return nonesafe.StreamParse(ctx, t, in, opt)
}
