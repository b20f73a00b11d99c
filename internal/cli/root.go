package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/twinlift/twinlift/internal/config"
)

var (
	rootDirFlag string
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "twinlift",
	Short: "Twinlift - digital twin package ETL pipeline",
	Long: `Twinlift ingests Asset Administration Shell packages and turns them
into queryable data: relational rows, vector embeddings, graph exports,
and RAG-ready datasets.

Configuration lives in .twinlift/config.yml under the project root and
can be overridden with TWINLIFT_* environment variables.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDirFlag, "root", "", "project root holding .twinlift/ (default is the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig resolves the project root and loads the configuration.
func loadConfig() (*config.Config, string, error) {
	rootDir := rootDirFlag
	if rootDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, "", fmt.Errorf("failed to get working directory: %w", err)
		}
		rootDir = wd
	}
	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, rootDir, nil
}
