package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/twinlift/twinlift/internal/config"
	"github.com/twinlift/twinlift/internal/load"
)

// Check is one pre-flight validation outcome.
type Check struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// PreflightReport is the structured result of pre-run validation.
type PreflightReport struct {
	OK     bool    `json:"ok"`
	Checks []Check `json:"checks"`
}

func (r *PreflightReport) add(name string, err error) {
	c := Check{Name: name, OK: err == nil}
	if err != nil {
		c.Detail = err.Error()
		r.OK = false
	}
	r.Checks = append(r.Checks, c)
}

// Preflight validates the environment before a run: the input path
// exists, the output directory is creatable, and every backend answers.
// It never mutates backend state beyond creating the output directory.
func Preflight(cfg *config.Config, loader *load.Loader, inputPath string) *PreflightReport {
	report := &PreflightReport{OK: true}

	if inputPath != "" {
		_, err := os.Stat(inputPath)
		report.add("input path", err)
	}

	report.add("output directory", ensureDir(cfg.Storage.OutputDirectory))

	pings := loader.Ping()
	report.add("relational backend", pings[load.BackendRelational])
	report.add("vector backend", pings[load.BackendVector])

	return report
}

func ensureDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("directory not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Clean(dir), err)
	}
	return nil
}
