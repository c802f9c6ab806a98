package model

// StepUnset is the sentinel written into the bulk payload's step array for
// items logged without an explicit step. The server assigns the next
// sequential step for the run when it sees this value.
const StepUnset = -1

// LogItem is a single buffered measurement. Items are immutable once created;
// the batcher owns them until a flush drains them into a BulkLogPayload.
type LogItem struct {
	Metrics   map[string]any `json:"metrics"`
	Step      *int           `json:"step,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
}

// BulkLogPayload is the wire shape of a bulk submission: parallel arrays,
// one entry per item, index-aligned across MetricsList, Steps and Timestamps.
type BulkLogPayload struct {
	Project     string           `json:"project"`
	Run         string           `json:"run"`
	MetricsList []map[string]any `json:"metrics_list"`
	Steps       []int            `json:"steps"`
	Timestamps  []string         `json:"timestamps"`
	Config      map[string]any   `json:"config"`
}

// Len returns the number of items carried by the payload.
func (p *BulkLogPayload) Len() int { return len(p.MetricsList) }

// Aligned reports whether the three parallel arrays have equal length.
func (p *BulkLogPayload) Aligned() bool {
	return len(p.MetricsList) == len(p.Steps) && len(p.MetricsList) == len(p.Timestamps)
}

// NewBulkLogPayload assembles a payload from drained items, preserving their
// order. A missing step becomes StepUnset and a missing timestamp becomes the
// empty string so the arrays stay aligned.
func NewBulkLogPayload(project, run string, items []LogItem) BulkLogPayload {
	metricsList := make([]map[string]any, 0, len(items))
	steps := make([]int, 0, len(items))
	timestamps := make([]string, 0, len(items))

	for _, it := range items {
		m := it.Metrics
		if m == nil {
			m = map[string]any{}
		}
		metricsList = append(metricsList, m)

		if it.Step != nil {
			steps = append(steps, *it.Step)
		} else {
			steps = append(steps, StepUnset)
		}

		timestamps = append(timestamps, it.Timestamp)
	}

	return BulkLogPayload{
		Project:     project,
		Run:         run,
		MetricsList: metricsList,
		Steps:       steps,
		Timestamps:  timestamps,
	}
}
