package btrcli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/function61/gokit/fileexists"
	"github.com/function61/gokit/jsonfile"
	"github.com/function61/gokit/osutil"
	"github.com/spf13/cobra"
)

const (
	configFilename = "btrbackup-config.json"
)

// defaults for command line flags. flags given explicitly always win.
type Config struct {
	Dev             string `json:"dev"` // example: "/dev/sdb1"
	Chdir           string `json:"chdir,omitempty"`
	KeepLatest      *int   `json:"keep_latest,omitempty"`
	MetricsTextfile string `json:"metrics_textfile,omitempty"`
}

func ConfigFilePath() (string, error) {
	usersHomeDirectory, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(usersHomeDirectory, configFilename), nil
}

// config file is optional. missing file yields empty config.
func ReadConfig() (*Config, error) {
	confPath, err := ConfigFilePath()
	if err != nil {
		return nil, fmt.Errorf("btrbackup config: %w", err)
	}

	return readConfigWithPath(confPath)
}

func readConfigWithPath(confPath string) (*Config, error) {
	exists, err := fileexists.Exists(confPath)
	if err != nil {
		return nil, fmt.Errorf("btrbackup config: %w", err)
	}

	conf := &Config{}

	if !exists {
		return conf, nil
	}

	if err := jsonfile.Read(confPath, conf, true); err != nil {
		return nil, fmt.Errorf("btrbackup config: %w", err)
	}

	if conf.KeepLatest != nil && *conf.KeepLatest < 0 {
		return nil, fmt.Errorf("btrbackup config: keep_latest must be non-negative; got %d", *conf.KeepLatest)
	}

	return conf, nil
}

func configPrintEntrypoint() *cobra.Command {
	return &cobra.Command{
		Use:   "config-print",
		Short: "Prints path to config file & its contents",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			confPath, err := ConfigFilePath()
			osutil.ExitIfError(err)

			fmt.Printf("file: %s\n", confPath)

			exists, err := fileexists.Exists(confPath)
			osutil.ExitIfError(err)

			if !exists {
				fmt.Println(".. does not exist. Everything must be given as flags.")
				return
			}

			file, err := os.Open(confPath)
			osutil.ExitIfError(err)
			defer file.Close()

			_, err = io.Copy(os.Stdout, file)
			osutil.ExitIfError(err)
		},
	}
}
