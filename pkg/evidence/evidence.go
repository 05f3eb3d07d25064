package evidence

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Audit record kinds emitted by the engine.
const (
	KindLineCreated      = "line_created"
	KindConflictResolved = "conflict_resolved"
	KindUnitSplit        = "unit_split"
	KindUnitTruncated    = "unit_truncated"
	KindPhaseDegraded    = "phase_degraded"
	KindSummary          = "summary"
)

// RunRecord captures run-level metadata.
type RunRecord struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	InputHash string    `json:"input_hash"`
	LineCount int       `json:"line_count,omitempty"`
}

// AuditRecord captures one engine-side event for downstream review.
type AuditRecord struct {
	Kind      string            `json:"kind"`
	LineID    string            `json:"line_id,omitempty"`
	Code      string            `json:"code,omitempty"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// CallRecord captures one adjudication call issued through the
// executor. Prompt and output bodies beyond the truncation limit are
// replaced by their hashes.
type CallRecord struct {
	Caller         string `json:"caller"`
	Backend        string `json:"backend"`
	Model          string `json:"model"`
	Prompt         string `json:"prompt,omitempty"`
	PromptHash     string `json:"prompt_hash,omitempty"`
	Output         string `json:"output,omitempty"`
	OutputHash     string `json:"output_hash,omitempty"`
	Failed         bool   `json:"failed,omitempty"`
	Error          string `json:"error,omitempty"`
	DurationMillis int64  `json:"duration_ms"`
}

const truncateLimit = 4096

// Collector accumulates evidence in memory for one run. The engine is
// otherwise stateless; the caller decides whether to persist the
// collected records.
type Collector struct {
	mu      sync.Mutex
	run     RunRecord
	records []AuditRecord
	calls   []CallRecord
}

// NewCollector creates a collector with a fresh run ID.
func NewCollector(inputHash string) *Collector {
	return &Collector{
		run: RunRecord{
			ID:        uuid.NewString(),
			Timestamp: time.Now().UTC(),
			InputHash: inputHash,
		},
	}
}

// Run returns the run-level record.
func (c *Collector) Run() RunRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.run
}

// SetLineCount records the materialized line count on the run record.
func (c *Collector) SetLineCount(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.run.LineCount = n
}

// Record appends one audit record.
func (c *Collector) Record(kind, lineID, code, message string, details map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, AuditRecord{
		Kind:      kind,
		LineID:    lineID,
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
}

// RecordCall appends one call record, truncating large bodies.
func (c *Collector) RecordCall(record CallRecord) {
	if len(record.Prompt) > truncateLimit {
		record.PromptHash = HashString(record.Prompt)
		record.Prompt = record.Prompt[:truncateLimit]
	}
	if len(record.Output) > truncateLimit {
		record.OutputHash = HashString(record.Output)
		record.Output = record.Output[:truncateLimit]
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, record)
}

// Records returns the collected audit records in order.
func (c *Collector) Records() []AuditRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]AuditRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Calls returns the collected call records in order.
func (c *Collector) Calls() []CallRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CallRecord, len(c.calls))
	copy(out, c.calls)
	return out
}

// HashString returns the hex sha256 of a string.
func HashString(value string) string {
	h := sha256.Sum256([]byte(value))
	return hex.EncodeToString(h[:])
}

// Writer writes a collected run to disk as a JSON evidence bundle.
type Writer struct {
	baseDir string
	runDir  string
}

// NewWriter creates an evidence writer rooted at baseDir/runID.
func NewWriter(baseDir, runID string) (*Writer, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("base directory is required")
	}
	if runID == "" {
		return nil, fmt.Errorf("run ID is required")
	}

	runDir := filepath.Join(baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, err
	}

	return &Writer{baseDir: baseDir, runDir: runDir}, nil
}

// RunDir returns the run directory path.
func (w *Writer) RunDir() string {
	return w.runDir
}

// WriteCollector writes run.json, audit.json, and calls.json for the
// collected run.
func (w *Writer) WriteCollector(c *Collector) error {
	if err := writeJSON(filepath.Join(w.runDir, "run.json"), c.Run()); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(w.runDir, "audit.json"), c.Records()); err != nil {
		return err
	}
	return writeJSON(filepath.Join(w.runDir, "calls.json"), c.Calls())
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
