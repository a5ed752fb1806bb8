// Package audit provides the append-only audit trail and receipt
// issuing required of every phase start, completion, approval
// decision, and plan-status transition.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/planforge/planforge/internal/types"
)

// DefaultMaxLogSize caps the active log file before rotation (10MB)
const DefaultMaxLogSize = 10 * 1024 * 1024

// Entry is one immutable audit record
type Entry struct {
	Timestamp time.Time              `json:"timestamp"`
	PlanID    string                 `json:"plan_id"`
	AgentID   string                 `json:"agent_id,omitempty"`
	UserID    string                 `json:"user_id,omitempty"`
	Action    string                 `json:"action"`
	PhaseID   int                    `json:"phase_id,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Trail records audit entries. Implementations must be safe for
// concurrent use.
type Trail interface {
	Record(entry Entry) error
}

// FileTrail appends JSONL entries to a single log file, rotating the
// file aside once it crosses maxSize
type FileTrail struct {
	mu      sync.Mutex
	file    *os.File
	size    int64
	maxSize int64
	path    string
}

// NewFileTrail opens (or creates) the audit log at path
func NewFileTrail(path string, maxSize int64) (*FileTrail, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxLogSize
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("audit: create log directory: %w", err)
	}
	t := &FileTrail{path: path, maxSize: maxSize}
	if err := t.open(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *FileTrail) open() error {
	file, err := os.OpenFile(t.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("audit: open log: %w", err)
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("audit: stat log: %w", err)
	}
	t.file = file
	t.size = stat.Size()
	return nil
}

// Record implements Trail
func (t *FileTrail) Record(entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("audit: marshal entry: %w", err)
	}
	line = append(line, '\n')

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.size+int64(len(line)) > t.maxSize {
		if err := t.rotate(); err != nil {
			return err
		}
	}
	n, err := t.file.Write(line)
	t.size += int64(n)
	if err != nil {
		return fmt.Errorf("audit: write entry: %w", err)
	}
	return nil
}

// rotate moves the active log aside under a timestamped name
func (t *FileTrail) rotate() error {
	if err := t.file.Close(); err != nil {
		return fmt.Errorf("audit: close for rotation: %w", err)
	}
	archived := fmt.Sprintf("%s.%s", t.path, time.Now().UTC().Format("20060102T150405"))
	if err := os.Rename(t.path, archived); err != nil {
		return fmt.Errorf("audit: rotate log: %w", err)
	}
	return t.open()
}

// Close flushes and closes the underlying file
func (t *FileTrail) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.file.Close()
}

// MemoryTrail keeps entries in memory for tests and status views
type MemoryTrail struct {
	mu      sync.Mutex
	Entries []Entry
}

// Record implements Trail
func (m *MemoryTrail) Record(entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, entry)
	return nil
}

// Actions returns the recorded action names in order
func (m *MemoryTrail) Actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		out[i] = e.Action
	}
	return out
}

// NewReceipt issues a receipt for one tool invocation
func NewReceipt(planID string, phaseID int, tool string, cost float64) types.Receipt {
	return types.Receipt{
		ID:        uuid.NewString(),
		PlanID:    planID,
		PhaseID:   phaseID,
		Tool:      tool,
		Cost:      cost,
		CreatedAt: time.Now().UTC(),
	}
}
