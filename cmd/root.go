package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jsphweid/scoreflow/config"
	"github.com/spf13/cobra"
)

var (
	cfgPath  string
	logLevel string
	cfg      config.Config
	logger   = log.Default()
)

var rootCmd = &cobra.Command{
	Use:   "scoreflow",
	Short: "Score export and performance tools",
	Long: `scoreflow serializes scores to MusicXML, planning how the voices of each
measure are laid out, and adjusts performed note offsets for the sustain pedal.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		logger = newLogger(cfg.LogLevel)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
}

var levels = map[string]log.Level{
	"debug": log.DebugLevel,
	"info":  log.InfoLevel,
	"warn":  log.WarnLevel,
	"error": log.ErrorLevel,
}

func newLogger(level string) *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	lvl, ok := levels[strings.ToLower(level)]
	if !ok {
		l.Warn("unknown log level, using info", "level", level)
		lvl = log.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// commandContext carries the configured logger to library code.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return log.WithContext(ctx, logger)
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

// Run executes the command line given by args.
func Run(args ...string) error {
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}
