package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/subrou-audio/subrou/pkg/config"
	"github.com/subrou-audio/subrou/pkg/framework/debug"
	"github.com/subrou-audio/subrou/pkg/host"
	"github.com/subrou-audio/subrou/pkg/host/bundle"
	"github.com/subrou-audio/subrou/pkg/host/inproc"
	"github.com/subrou-audio/subrou/pkg/smoke"
)

// Exit codes
const (
	exitOK        = 0
	exitAssertion = 1
	exitUsage     = 2
	exitLoad      = 3
)

// PassedMessage is printed when every scenario passes.
const PassedMessage = "Plugin smoke tests passed"

var errUsage = errors.New("usage")

func newRootCmd(stdout io.Writer) *cobra.Command {
	var configPath string
	var showReport bool

	cmd := &cobra.Command{
		Use:   "subrou-smoke",
		Short: "Smoke-test a VST3 plugin bundle",
		Long: `subrou-smoke loads a VST3 plugin and runs three scenarios: silence must stay
silent, full-scale input must be changed, and a 48 kHz block must keep its shape.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadWithFlags(cmd.Flags(), configPath)
			if err != nil {
				return err
			}
			if err := debug.ConfigureGlobalLogging(cfg.Log.Level, cmd.ErrOrStderr()); err != nil {
				return fmt.Errorf("%w: %w", config.ErrInvalid, err)
			}

			loader := host.NewMux(bundle.NewLoader(cfg.Host))
			loader.Handle(inproc.Scheme, inproc.NewLoader(cfg.Host))

			report, err := smoke.RunPath(cmd.Context(), loader, cfg.Plugin, cfg.Scenarios,
				smoke.WithTolerance(cfg.Tolerance))
			if showReport && report != nil {
				fmt.Fprint(stdout, report.String())
			}
			if err != nil {
				return err
			}

			_, err = color.New(color.FgGreen).Fprintln(stdout, PassedMessage)
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	flags.BoolVar(&showReport, "report", false, "Print a per-scenario table")
	flags.StringP("plugin", "p", config.DefaultPlugin, "Plugin bundle, shared object or builtin:<name>")
	flags.Bool("builtin", false, "Test the built-in Subrou processor instead of a bundle")
	flags.String("class", "", "Plugin class name when the module exports several")
	flags.Int("block-size", host.DefaultBlockSize, "Maximum frames per process call")
	flags.String("process-mode", "realtime", "VST3 process mode: realtime, prefetch or offline")
	flags.StringToString("param", nil, "Set a built-in plugin parameter, e.g. --param pitch=1kHz")
	flags.Bool("no-reset", false, "Keep plugin state between scenarios")
	flags.String("log-level", "warn", "Log level: debug, info, warn, error or off")
	flags.Bool("debug", false, "Shorthand for --log-level debug")

	cmd.SetOut(stdout)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errUsage, err)
	})
	return cmd
}

// run executes the command and maps its error to an exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	_, _ = color.New(color.FgRed).Fprintf(stderr, "Error: %v\n", err)
	return exitCode(err)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, smoke.ErrAssertion):
		return exitAssertion
	case errors.Is(err, host.ErrLoad):
		return exitLoad
	case errors.Is(err, config.ErrInvalid), errors.Is(err, errUsage):
		return exitUsage
	}
	return exitAssertion
}
