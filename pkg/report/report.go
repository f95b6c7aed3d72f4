// Package report summarises a batch of downloads and persists the summary
// next to the downloaded files.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"pinitdown/pkg/logger"
	"pinitdown/pkg/models"
)

// Summary is the aggregate of one batch
type Summary struct {
	Total     int                     `json:"total" yaml:"total"`
	Succeeded int                     `json:"succeeded" yaml:"succeeded"`
	NoAsset   int                     `json:"no_asset" yaml:"no_asset"`
	Failed    int                     `json:"failed" yaml:"failed"`
	Bytes     int64                   `json:"bytes" yaml:"bytes"`
	Elapsed   time.Duration           `json:"elapsed" yaml:"elapsed"`
	Outcomes  map[models.Outcome]int  `json:"outcomes" yaml:"outcomes"`
	Generated time.Time               `json:"generated_at" yaml:"generated_at"`
	Results   []models.DownloadResult `json:"results" yaml:"results"`
}

// Summarize counts results by outcome. Results keep their input order.
func Summarize(results []models.DownloadResult, elapsed time.Duration) *Summary {
	s := &Summary{
		Total:     len(results),
		Elapsed:   elapsed,
		Outcomes:  make(map[models.Outcome]int),
		Generated: time.Now(),
		Results:   results,
	}
	for _, r := range results {
		s.Outcomes[r.Outcome]++
		switch r.Outcome {
		case models.OutcomeSuccess:
			s.Succeeded++
			s.Bytes += r.Bytes
		case models.OutcomeNoAsset:
			s.NoAsset++
		default:
			s.Failed++
		}
	}
	return s
}

// Log writes the totals through the package logger
func (s *Summary) Log() {
	logger.LogBatch(s.Total, s.Succeeded, s.NoAsset, s.Failed, s.Elapsed)
}

// String returns a one-line summary such as "3 succeeded, 1 no asset, 0 failed (4.2 MB)"
func (s *Summary) String() string {
	return fmt.Sprintf("%d succeeded, %d no asset, %d failed (%s)",
		s.Succeeded, s.NoAsset, s.Failed, humanize.Bytes(uint64(s.Bytes)))
}

// Failures returns the results that did not produce a file, asset-less pins included
func (s *Summary) Failures() []models.DownloadResult {
	var out []models.DownloadResult
	for _, r := range s.Results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}

// Save writes the summary to path. A .yaml or .yml extension selects YAML,
// anything else is written as indented JSON.
func (s *Summary) Save(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(s)
	default:
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}

// Load reads a summary previously written by Save
func Load(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}

	var s Summary
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &s)
	default:
		err = json.Unmarshal(data, &s)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &s, nil
}
