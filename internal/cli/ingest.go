package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/twinlift/twinlift/internal/config"
	"github.com/twinlift/twinlift/internal/embed"
	"github.com/twinlift/twinlift/internal/load"
	"github.com/twinlift/twinlift/internal/model"
	"github.com/twinlift/twinlift/internal/pipeline"
)

var (
	quietFlag   bool
	watchFlag   bool
	dirFlag     string
	patternFlag string
	reportFlag  bool
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest [package.zip]",
	Short: "Run the ETL pipeline over digital twin packages",
	Long: `Ingest extracts shells, submodels, and documents from AAS packages,
scores and enriches them, and loads the results into all configured
backends.

Examples:
  # Process a single package
  twinlift ingest plant-line-3.zip

  # Process every package under a directory
  twinlift ingest --dir ./packages

  # Restrict the batch to a filename pattern
  twinlift ingest --dir ./packages --pattern "line-*.zip"

  # Keep watching the directory for new packages
  twinlift ingest --dir ./packages --watch
`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	ingestCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch the directory and process packages as they appear")
	ingestCmd.Flags().StringVarP(&dirFlag, "dir", "d", "", "Process all matching packages under this directory")
	ingestCmd.Flags().StringVarP(&patternFlag, "pattern", "p", "", "Glob pattern for batch discovery (default \"*.zip\")")
	ingestCmd.Flags().BoolVar(&reportFlag, "report", false, "Write a run report artifact to the output directory")
}

func runIngest(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && dirFlag == "" {
		return fmt.Errorf("provide a package file or --dir")
	}
	if len(args) > 0 && dirFlag != "" {
		return fmt.Errorf("provide either a package file or --dir, not both")
	}
	if watchFlag && dirFlag == "" {
		return fmt.Errorf("--watch requires --dir")
	}

	// Set up context with cancellation for Ctrl+C
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted! Cancelling...")
		cancel()
	}()

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if quietFlag {
		cfg.Pipeline.EnableLogging = false
	}

	orch, loader, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer loader.Close()

	if cfg.Pipeline.EnableValidation {
		input := dirFlag
		if len(args) > 0 {
			input = args[0]
		}
		report := pipeline.Preflight(cfg, loader, input)
		printPreflight(report)
		if !report.OK {
			return fmt.Errorf("pre-flight validation failed")
		}
	}

	if len(args) > 0 {
		return ingestSingle(ctx, orch, args[0])
	}
	if err := ingestBatch(ctx, cfg, orch); err != nil {
		return err
	}
	if watchFlag {
		watcher, err := pipeline.NewWatcher(orch, patternFlag)
		if err != nil {
			return err
		}
		if err := watcher.Watch(ctx, dirFlag); err != nil && ctx.Err() == nil {
			return err
		}
	}
	return nil
}

// buildPipeline wires provider, chunker, loader, and orchestrator from config.
func buildPipeline(cfg *config.Config) (*pipeline.Orchestrator, *load.Loader, error) {
	provider, err := embed.NewProvider(cfg.Embedding)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create embedding provider: %w", err)
	}
	chunker, err := load.NewChunker(cfg.Embedding.ChunkSize, cfg.Embedding.Overlap)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid chunking configuration: %w", err)
	}
	loader := load.New(cfg.Storage, cfg.Transform, cfg.Pipeline, provider, chunker)
	return pipeline.NewOrchestrator(cfg, loader), loader, nil
}

func ingestSingle(ctx context.Context, orch *pipeline.Orchestrator, path string) error {
	resp := orch.Process(ctx, path)
	if !resp.Success {
		fmt.Printf("%s %s (%s)\n", failMark("✗"), resp.Message, resp.ErrorCode)
		return fmt.Errorf("ingestion failed")
	}
	if !quietFlag {
		fmt.Printf("%s %s\n", okMark("✓"), resp.Message)
	}
	return nil
}

func ingestBatch(ctx context.Context, cfg *config.Config, orch *pipeline.Orchestrator) error {
	files, err := pipeline.DiscoverFiles(dirFlag, patternFlag)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		if !quietFlag {
			log.Printf("No packages matching pattern under %s\n", dirFlag)
		}
		return nil
	}

	progress := newBatchProgress(len(files), quietFlag)
	orch.OnFile = progress.OnFile

	started := time.Now().UTC()
	report, err := orch.RunBatch(ctx, dirFlag, patternFlag)
	if err != nil {
		return err
	}
	orch.OnFile = nil

	printBatchSummary(report)
	if reportFlag {
		run := &pipeline.RunReport{
			RunID:      uuid.NewString(),
			StartedAt:  started,
			FinishedAt: time.Now().UTC(),
			Batch:      report,
			Totals:     orch.Stats().Snapshot(),
		}
		path, err := pipeline.WriteRunReport(cfg.Storage.OutputDirectory, run)
		if err != nil {
			return err
		}
		if !quietFlag {
			fmt.Printf("Run report written to %s\n", path)
		}
	}
	if report.Aborted {
		return fmt.Errorf("batch aborted after repeated failures")
	}
	return nil
}

func printBatchSummary(report *pipeline.BatchReport) {
	if quietFlag {
		return
	}
	fmt.Printf("\n%s %d processed, %s, %v elapsed\n",
		okMark("✓"), report.FilesProcessed,
		failuresText(report.FilesFailed), report.Elapsed.Round(time.Millisecond))
	for _, r := range report.Results {
		if r.Status != model.StatusFailed {
			continue
		}
		fmt.Printf("  %s %s: %s phase: %s (%s)\n",
			failMark("✗"), r.SourceFile, r.Phase, r.Error, r.ErrorCode)
	}
}

func failuresText(n int) string {
	if n == 0 {
		return okMark("0 failed")
	}
	return failMark(fmt.Sprintf("%d failed", n))
}

func printPreflight(report *pipeline.PreflightReport) {
	if quietFlag && report.OK {
		return
	}
	for _, check := range report.Checks {
		if check.OK {
			if !quietFlag {
				fmt.Printf("%s %s\n", okMark("✓"), check.Name)
			}
			continue
		}
		fmt.Printf("%s %s: %s\n", warnText("✗"), check.Name, check.Detail)
	}
}
