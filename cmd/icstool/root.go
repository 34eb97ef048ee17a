package main

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-ics/internal/config"
	"github.com/robert-malhotra/go-ics/internal/logging"
)

// app is the state shared by all subcommands of one invocation.
type app struct {
	out io.Writer
	cfg *config.Config
	log *zap.Logger

	configPath string
	logLevel   string
	logFile    string
	dev        bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out, cfg: config.Default(), log: zap.NewNop()}

	root := &cobra.Command{
		Use:   "icstool",
		Short: "Inspect, edit and convert ICS image files",
		Long: `icstool works with Image Cytometry Standard (ICS) files, versions 1 and 2.

Settings are read from --config (or icstool.yaml in the user config
directory), then from ICSTOOL_* variables in .env and the environment, then
from flags.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Flags())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.log.Sync()
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/icstool.yaml)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringVar(&a.logFile, "log-file", "", "also log to this file, rotated")
	pf.BoolVar(&a.dev, "dev", false, "human readable debug logging")

	root.AddCommand(
		newInfoCmd(a),
		newHistoryCmd(a),
		newConvertCmd(a),
		newExportCmd(a),
		newDigestCmd(a),
	)
	return root
}

// setup loads the configuration, applies the global flags and builds the
// logger.
func (a *app) setup(flags *pflag.FlagSet) error {
	cfg, err := config.Load(a.configPath, ".env")
	if err != nil {
		return err
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("log-file") {
		cfg.Log.File = a.logFile
	}
	if flags.Changed("dev") {
		cfg.Log.Development = a.dev
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.log = logging.New(logging.Options{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		File:        cfg.Log.File,
		MaxSizeMB:   cfg.Log.MaxSizeMB,
		MaxBackups:  cfg.Log.MaxBackups,
		MaxAgeDays:  cfg.Log.MaxAgeDays,
		Compress:    cfg.Log.Compress,
	})
	return nil
}
