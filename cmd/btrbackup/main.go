package main

import (
	"os"

	"github.com/function61/btrbackup/pkg/btrcli"
	"github.com/function61/gokit/dynversion"
	"github.com/function61/gokit/osutil"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     os.Args[0],
		Short:   "Snapshots & retention for btrfs subvolumes organized in logical directories",
		Version: dynversion.Version,
		// hide the default "completion" subcommand from polluting UX (it can still be used). https://github.com/spf13/cobra/issues/1507
		CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	}

	globals := &btrcli.GlobalOptions{}
	globals.AddFlags(rootCmd)

	for _, entrypoint := range btrcli.Entrypoints(globals) {
		rootCmd.AddCommand(entrypoint)
	}

	osutil.ExitIfError(rootCmd.Execute())
}
