package packager

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ReportFile is the name of the report written next to the archives.
const ReportFile = "report.json"

// Report summarises one packaging run.
type Report struct {
	RunID     string     `json:"run_id"`
	CreatedAt time.Time  `json:"created_at"`
	Artifacts []Artifact `json:"artifacts"`
}

// NewReport stamps the artifacts with a fresh time ordered run id.
func NewReport(artifacts []Artifact) (Report, error) {
	runID, err := uuid.NewV7()
	if err != nil {
		return Report{}, fmt.Errorf("failed to generate run id: %w", err)
	}
	return Report{
		RunID:     runID.String(),
		CreatedAt: time.Now().UTC(),
		Artifacts: artifacts,
	}, nil
}

// WriteReport writes the report as indented JSON into dir.
func WriteReport(dir string, report Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, ReportFile)
	// #nosec G306 - the report is published with the archives
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
