package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"time"

	"github.com/twinlift/twinlift/internal/model"
)

// tier1 invokes an external, specification-compliant parsing engine as a
// separate process. The engine receives the package path as its sole
// argument and must emit one JSON document on stdout.
type tier1 struct {
	command string
	timeout time.Duration
}

func newTier1(command string, timeout time.Duration) *tier1 {
	return &tier1{command: command, timeout: timeout}
}

func (t *tier1) Name() string { return "tier1" }

func (t *tier1) Available() bool {
	_, err := exec.LookPath(t.command)
	return err == nil
}

// tier1Payload is the documented stdout schema of the external engine.
type tier1Payload struct {
	Assets []struct {
		ID          string `json:"id"`
		IDShort     string `json:"idShort"`
		Description string `json:"description"`
		Kind        string `json:"kind"`
		Source      string `json:"source"`
		Format      string `json:"format"`
	} `json:"assets"`
	Submodels []struct {
		ID          string `json:"id"`
		IDShort     string `json:"idShort"`
		Description string `json:"description"`
		Kind        string `json:"kind"`
		Source      string `json:"source"`
		Format      string `json:"format"`
	} `json:"submodels"`
	Documents []struct {
		Filename string `json:"filename"`
		Size     int64  `json:"size"`
		Type     string `json:"type"`
	} `json:"documents"`
}

// Parse runs the external engine under a timeout. A deadline hit maps to
// Tier1Timeout; non-zero exit or malformed JSON maps to ParseFailure.
// Both are recovered by the chain, never raised to the caller.
func (t *tier1) Parse(ctx context.Context, req ParseRequest) (*model.ExtractionResult, error) {
	runCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, t.command, req.Path)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return nil, model.NewError(model.ErrTier1Timeout, t.command+" exceeded file_timeout", runCtx.Err())
	}
	if err != nil {
		return nil, model.NewError(model.ErrParseFailure, t.command+" exited non-zero: "+stderr.String(), err)
	}

	var payload tier1Payload
	if err := json.Unmarshal(stdout.Bytes(), &payload); err != nil {
		return nil, model.NewError(model.ErrParseFailure, t.command+" emitted malformed JSON", err)
	}

	return t.toResult(&payload), nil
}

func (t *tier1) toResult(payload *tier1Payload) *model.ExtractionResult {
	result := &model.ExtractionResult{}
	for _, a := range payload.Assets {
		result.Assets = append(result.Assets, model.Asset{
			ID:          a.ID,
			ShortID:     a.IDShort,
			Description: a.Description,
			Kind:        a.Kind,
			Provenance:  model.Provenance{Format: a.Format},
		})
	}
	for _, s := range payload.Submodels {
		result.Submodels = append(result.Submodels, model.Submodel{
			ID:          s.ID,
			ShortID:     s.IDShort,
			Description: s.Description,
			Kind:        s.Kind,
			Provenance:  model.Provenance{Format: s.Format},
		})
	}
	for _, d := range payload.Documents {
		result.Documents = append(result.Documents, model.Document{
			Filename: d.Filename,
			Size:     d.Size,
			Type:     d.Type,
		})
	}
	return result
}
