package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/gradio-app/trackio-go/pkg/storage"
)

// Exporter handles exporting run metrics to various formats.
type Exporter struct {
	storage storage.Storage
}

// NewExporter creates a new exporter.
func NewExporter(store storage.Storage) *Exporter {
	return &Exporter{storage: store}
}

// ExportResult contains stats about the export.
type ExportResult struct {
	RowsExported int       `json:"rows_exported"`
	Project      string    `json:"project"`
	Run          string    `json:"run"`
	Format       string    `json:"format"`
	ExportedAt   time.Time `json:"exported_at"`
}

// exportEnvelope is the JSON backup format. Import reads the same shape.
type exportEnvelope struct {
	Metadata struct {
		ExportedAt time.Time `json:"exported_at"`
		Project    string    `json:"project"`
		Run        string    `json:"run"`
		RowCount   int       `json:"row_count"`
		Version    string    `json:"version"`
	} `json:"metadata"`
	Rows []storage.Row `json:"rows"`
}

// ExportToJSON exports one run's metrics as JSON to the given writer.
func (e *Exporter) ExportToJSON(ctx context.Context, w io.Writer, project, run string) (*ExportResult, error) {
	rows, err := e.storage.Metrics(ctx, project, run)
	if err != nil {
		return nil, fmt.Errorf("failed to read metrics: %w", err)
	}

	var envelope exportEnvelope
	envelope.Metadata.ExportedAt = time.Now()
	envelope.Metadata.Project = project
	envelope.Metadata.Run = run
	envelope.Metadata.RowCount = len(rows)
	envelope.Metadata.Version = "1.0"
	envelope.Rows = rows

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(envelope); err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}

	return &ExportResult{
		RowsExported: len(rows),
		Project:      project,
		Run:          run,
		Format:       "json",
		ExportedAt:   envelope.Metadata.ExportedAt,
	}, nil
}

// ExportToCSV exports one run's metrics as CSV to the given writer. Columns
// are step, timestamp, then every metric key seen in the run, sorted.
func (e *Exporter) ExportToCSV(ctx context.Context, w io.Writer, project, run string) (*ExportResult, error) {
	rows, err := e.storage.Metrics(ctx, project, run)
	if err != nil {
		return nil, fmt.Errorf("failed to read metrics: %w", err)
	}

	writer := csv.NewWriter(w)
	defer writer.Flush()

	metricKeys := collectMetricKeys(rows)

	header := []string{"step", "timestamp"}
	header = append(header, metricKeys...)
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.Step),
			row.Timestamp.Format(time.RFC3339Nano),
		}
		for _, key := range metricKeys {
			val, ok := row.Metrics[key]
			if !ok {
				record = append(record, "")
				continue
			}
			record = append(record, formatValue(val))
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return &ExportResult{
		RowsExported: len(rows),
		Project:      project,
		Run:          run,
		Format:       "csv",
		ExportedAt:   time.Now(),
	}, nil
}

// collectMetricKeys gathers every metric key across the run's rows, sorted
// for stable column order.
func collectMetricKeys(rows []storage.Row) []string {
	keySet := make(map[string]bool)
	for _, row := range rows {
		for key := range row.Metrics {
			keySet[key] = true
		}
	}

	keys := make([]string, 0, len(keySet))
	for key := range keySet {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// formatValue renders a metric value for one CSV cell. Metrics are decoded
// from JSON, so numbers arrive as float64; anything structured falls back to
// its JSON encoding.
func formatValue(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}
