// Command line interface: one cobra subcommand per operation
package btrcli

import (
	"errors"
	"os"

	"github.com/function61/btrbackup/pkg/layout"
	"github.com/function61/gokit/osutil"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func Entrypoints(globals *GlobalOptions) []*cobra.Command {
	return []*cobra.Command{
		checkEntrypoint(globals),
		listEntrypoint(globals),
		snapshotEntrypoint(globals),
		removeEntrypoint(globals),
		graphEntrypoint(globals),
		initEntrypoint(globals),
		configPrintEntrypoint(),
	}
}

func checkEntrypoint(globals *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that subvolumes follow the logical directory structure",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			osutil.ExitIfError(globals.run(func(_ *Config) (operation, error) {
				return checkOp{}, nil
			}))
		},
	}
}

func listEntrypoint(globals *GlobalOptions) *cobra.Command {
	count := false
	all := false

	cmd := &cobra.Command{
		Use:   "list [logicalDir]",
		Short: "List snapshots (latest only, unless --all)",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			osutil.ExitIfError(globals.run(func(_ *Config) (operation, error) {
				return listOp{
					selector: selectorArg(args),
					count:    count,
					all:      all,
					table:    isatty.IsTerminal(os.Stdout.Fd()),
				}, nil
			}))
		},
	}

	cmd.Flags().BoolVarP(&count, "count", "", count, "Show snapshot count")
	cmd.Flags().BoolVarP(&all, "all", "", all, "Show all snapshots")

	return cmd
}

func snapshotEntrypoint(globals *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot [logicalDir]",
		Short: "Snapshot active subvolume of each matching logical directory",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			osutil.ExitIfError(globals.run(func(_ *Config) (operation, error) {
				return snapshotOp{selector: selectorArg(args)}, nil
			}))
		},
	}
}

func removeEntrypoint(globals *GlobalOptions) *cobra.Command {
	keepLatest := 0
	dryRun := false

	cmd := &cobra.Command{
		Use:   "remove [logicalDir]",
		Short: "Remove all but the latest N snapshots",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			keepLatestGiven := cmd.Flags().Changed("keep-latest")

			osutil.ExitIfError(globals.run(func(conf *Config) (operation, error) {
				switch {
				case keepLatestGiven:
				case conf.KeepLatest != nil:
					keepLatest = *conf.KeepLatest
				default:
					return nil, errors.New("--keep-latest not given and not set in config file")
				}

				return removeOp{
					selector:   selectorArg(args),
					keepLatest: keepLatest,
					dryRun:     dryRun,
				}, nil
			}))
		},
	}

	cmd.Flags().IntVarP(&keepLatest, "keep-latest", "", keepLatest, "How many of the newest snapshots to keep per logical directory")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "", dryRun, "Only report what would be removed")

	return cmd
}

func graphEntrypoint(globals *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Draw logical directories and their subvolumes as a tree",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			osutil.ExitIfError(globals.run(func(_ *Config) (operation, error) {
				return graphOp{}, nil
			}))
		},
	}
}

func initEntrypoint(globals *GlobalOptions) *cobra.Command {
	mountPath := ""

	cmd := &cobra.Command{
		Use:   "init [logicalDir]",
		Short: "Create a logical directory with an empty active subvolume",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			osutil.ExitIfError(globals.run(func(_ *Config) (operation, error) {
				return initOp{
					logicalDir: args[0],
					mountPath:  mountPath,
				}, nil
			}))
		},
	}

	cmd.Flags().StringVarP(&mountPath, "mount-path", "", mountPath, "Mount the new active subvolume here")

	return cmd
}

// reads config, resolves options and runs the operation inside a mounted workdir
func (g *GlobalOptions) run(buildOp func(conf *Config) (operation, error)) error {
	conf, err := ReadConfig()
	if err != nil {
		return err
	}

	opts := g.mergedWith(conf)
	if err := opts.validate(); err != nil {
		return err
	}

	op, err := buildOp(conf)
	if err != nil {
		return err
	}

	logl := newLogger(opts.Verbosity)

	logl.Debug.Printf("options: %+v operation: %#v", opts, op)

	return withWorkdir(opts, os.Stdout, logl, func(wd *workdir) error {
		return execute(op, wd)
	})
}

func selectorArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}

	return layout.SelectAll
}
