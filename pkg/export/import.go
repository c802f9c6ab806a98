package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gradio-app/trackio-go/pkg/storage"
)

const (
	// MaxImportBatchSize is the maximum number of rows to write at once.
	MaxImportBatchSize = 5000
)

// Importer handles importing run metrics from backup files.
type Importer struct {
	storage storage.Storage
}

// NewImporter creates a new importer.
func NewImporter(store storage.Storage) *Importer {
	return &Importer{storage: store}
}

// ImportResult contains stats about the import operation.
type ImportResult struct {
	RowsImported   int       `json:"rows_imported"`
	BatchesWritten int       `json:"batches_written"`
	Project        string    `json:"project"`
	Run            string    `json:"run"`
	ImportedAt     time.Time `json:"imported_at"`
	Errors         []string  `json:"errors,omitempty"`
}

// ImportFromJSON imports run metrics from a JSON backup produced by
// ExportToJSON. The project and run come from the backup's metadata.
func (im *Importer) ImportFromJSON(ctx context.Context, r io.Reader) (*ImportResult, error) {
	var envelope exportEnvelope
	if err := json.NewDecoder(r).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}

	project := envelope.Metadata.Project
	run := envelope.Metadata.Run
	if project == "" || run == "" {
		return nil, fmt.Errorf("backup metadata missing project or run")
	}

	if len(envelope.Rows) == 0 {
		return &ImportResult{
			Project:    project,
			Run:        run,
			ImportedAt: time.Now(),
		}, nil
	}

	var validationErrors []string
	validRows := make([]storage.Row, 0, len(envelope.Rows))
	for i, row := range envelope.Rows {
		if err := validateImportedRow(row); err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("row %d: %v", i, err))
			continue
		}
		row.Project = project
		row.Run = run
		validRows = append(validRows, row)
	}

	// Write in batches to keep transactions bounded
	batchCount := 0
	for i := 0; i < len(validRows); i += MaxImportBatchSize {
		end := i + MaxImportBatchSize
		if end > len(validRows) {
			end = len(validRows)
		}

		if err := im.storage.WriteBulk(ctx, project, run, validRows[i:end]); err != nil {
			return nil, fmt.Errorf("failed to write batch %d: %w", batchCount, err)
		}
		batchCount++
	}

	return &ImportResult{
		RowsImported:   len(validRows),
		BatchesWritten: batchCount,
		Project:        project,
		Run:            run,
		ImportedAt:     time.Now(),
		Errors:         validationErrors,
	}, nil
}

// validateImportedRow validates a row before import.
func validateImportedRow(row storage.Row) error {
	if row.Step < 0 {
		return fmt.Errorf("step cannot be negative: %d", row.Step)
	}
	if row.Timestamp.IsZero() {
		return fmt.Errorf("timestamp cannot be zero")
	}
	if len(row.Metrics) == 0 {
		return fmt.Errorf("row has no metrics")
	}
	return nil
}
