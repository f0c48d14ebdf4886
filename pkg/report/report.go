// Package report persists per-run replay reports as JSON artifacts.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/devicelab-dev/axreplay/pkg/core"
	"github.com/devicelab-dev/axreplay/pkg/signature"
)

// RunReport is the on-disk record of one pipeline run: enough for a
// human or an agent to diagnose which stage diverged and why.
type RunReport struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	// What was replayed.
	Signature SignatureSummary `json:"signature"`
	Session   string           `json:"session,omitempty"` // source session file
	Index     int              `json:"index"`             // record index within the session

	// What happened.
	Result core.Result `json:"result"`
}

// SignatureSummary is the replayed signature minus recorder bookkeeping.
type SignatureSummary struct {
	Role        string `json:"role"`
	Label       string `json:"label,omitempty"`
	App         string `json:"app"`
	WindowTitle string `json:"windowTitle,omitempty"`
}

// Summarize builds the report summary for a signature.
func Summarize(sig *signature.ElementSignature) SignatureSummary {
	return SignatureSummary{
		Role:        sig.Role,
		Label:       sig.BestLabel(),
		App:         sig.App.Name,
		WindowTitle: sig.WindowTitle,
	}
}

// Write persists a run report to dir as run-<uuid>.json and returns the
// file path.
func Write(dir string, rep *RunReport) (string, error) {
	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	if rep.CreatedAt.IsZero() {
		rep.CreatedAt = time.Now()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("report dir: %w", err)
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, "run-"+rep.ID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
