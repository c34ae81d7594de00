package btrcli

import (
	"errors"

	"github.com/function61/gokit/logex"
	"github.com/spf13/cobra"
)

// flags shared by every subcommand
type GlobalOptions struct {
	Dev             string
	Chdir           string
	Verbosity       int
	MetricsTextfile string
}

func (g *GlobalOptions) AddFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()

	flags.StringVarP(&g.Dev, "dev", "", g.Dev, "btrfs device (or a directory, which is used as-is without mounting)")
	flags.StringVarP(&g.Chdir, "chdir", "", g.Chdir, "Directory on the device holding the logical directories")
	flags.CountVarP(&g.Verbosity, "verbose", "v", "Verbose logging (repeat for debug)")
	flags.StringVarP(&g.MetricsTextfile, "metrics-textfile", "", g.MetricsTextfile, "Write Prometheus metrics to this file after success")
}

// flags win over config file
func (g *GlobalOptions) mergedWith(conf *Config) GlobalOptions {
	merged := *g

	if merged.Dev == "" {
		merged.Dev = conf.Dev
	}

	if merged.Chdir == "" {
		merged.Chdir = conf.Chdir
	}

	if merged.MetricsTextfile == "" {
		merged.MetricsTextfile = conf.MetricsTextfile
	}

	return merged
}

func (g *GlobalOptions) validate() error {
	if g.Dev == "" {
		return errors.New("--dev not given and not set in config file")
	}

	return nil
}

// 0 => errors only, 1 => +info, 2+ => +debug
func newLogger(verbosity int) *logex.Leveled {
	logl := logex.Levels(logex.StandardLogger())

	if verbosity < 2 {
		logl.Debug = logex.Discard
	}

	if verbosity < 1 {
		logl.Info = logex.Discard
	}

	return logl
}
