// Package export provides run backup and restore functionality.
//
// # Overview
//
// The export package lets users download a run's metrics as JSON or CSV
// files and restore JSON backups later. This is useful for:
//   - Backing up training runs before wiping a local server
//   - Moving runs between Trackio instances
//   - Analyzing metrics in pandas, Excel, or other external tools
//
// # Supported Formats
//
// JSON Format:
//   - Preserves every row (step, timestamp, full metrics map)
//   - Includes export metadata (project, run, row count)
//   - Can be re-imported
//
// CSV Format:
//   - One row per logged step, one column per metric key
//   - Good for spreadsheets and dataframe tooling
//   - Cannot be re-imported (export-only)
//
// # HTTP API
//
// Export endpoint: GET /api/export
// Query parameters:
//   - project: project name (required)
//   - run: run name (required)
//   - format: "json" or "csv" (default: json)
//
// Example:
//
//	curl "http://localhost:7860/api/export?project=demo&run=run-1&format=csv" \
//	  -o run-1.csv
//
// Import endpoint: POST /api/import
// Content-Type: application/json
//
// Example:
//
//	curl -X POST "http://localhost:7860/api/import" \
//	  -H "Content-Type: application/json" \
//	  -d @backup.json
//
// Imported rows keep their original steps and timestamps; the target
// project and run come from the backup's metadata.
package export
