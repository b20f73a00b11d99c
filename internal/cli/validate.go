package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/twinlift/twinlift/internal/pipeline"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Run pre-flight checks against the configured backends",
	Long: `Validate verifies the environment without processing anything: the
optional input path exists, the output directory is writable, and every
storage backend answers.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		_, loader, err := buildPipeline(cfg)
		if err != nil {
			return err
		}
		defer loader.Close()

		input := ""
		if len(args) > 0 {
			input = args[0]
		}
		report := pipeline.Preflight(cfg, loader, input)
		printPreflight(report)
		if !report.OK {
			return fmt.Errorf("pre-flight validation failed")
		}
		fmt.Printf("%s environment ready\n", okMark("✓"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
