// Package state persists the orchestrator's health, history, and
// configuration overrides as a single JSON snapshot.
//
// The snapshot is rewritten in full on every save; saves are coalesced
// by a throttle window, and the file is written atomically (temp file +
// rename) under an advisory flock so only one writer ever touches it.
package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/Aman-CERP/omnisearch/internal/config"
	"github.com/Aman-CERP/omnisearch/internal/health"
	"github.com/Aman-CERP/omnisearch/internal/tracker"
)

// SnapshotVersion is the persisted document version. Documents with a
// different version are ignored and the system starts from empty state.
const SnapshotVersion = "1.0"

// SnapshotFileName is the snapshot file name inside the state directory.
const SnapshotFileName = "omnisearch-state.json"

// Snapshot is the persisted document.
type Snapshot struct {
	Version                string                           `json:"version"`
	LastUpdated            time.Time                        `json:"last_updated"`
	ProviderHealth         map[string]health.ProviderHealth `json:"provider_health"`
	PerformanceRecords     []tracker.Record                 `json:"performance_records"`
	ConfigurationOverrides config.Overrides                 `json:"configuration_overrides"`
}

// Collector gathers the current in-memory state for a save.
// It must not be invoked while any subsystem lock is held; the manager
// only calls it from its own deferred-save goroutine.
type Collector func() Snapshot

// Manager owns the snapshot file.
type Manager struct {
	path     string
	throttle time.Duration
	logger   *slog.Logger
	lock     *flock.Flock

	mu       sync.Mutex
	collect  Collector
	lastSave time.Time
	pending  *time.Timer
	closed   bool
}

// DefaultDir resolves the state directory: the configured directory if
// set, else an "omnisearch" directory under the system temp dir.
func DefaultDir(configured string) string {
	if configured != "" {
		return configured
	}
	return filepath.Join(os.TempDir(), "omnisearch")
}

// NewManager creates a state manager writing to dir/SnapshotFileName.
func NewManager(dir string, throttle time.Duration, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	path := filepath.Join(dir, SnapshotFileName)
	return &Manager{
		path:     path,
		throttle: throttle,
		logger:   logger,
		lock:     flock.New(path + ".lock"),
		// Treat startup as a fresh write so the first burst of mutations
		// coalesces into one deferred save instead of racing timer zero.
		lastSave: time.Now(),
	}
}

// Path returns the snapshot file path.
func (m *Manager) Path() string { return m.path }

// SetCollector installs the state-gathering callback.
func (m *Manager) SetCollector(fn Collector) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collect = fn
}

// Load reads the snapshot from disk. A missing file or a version
// mismatch yields an empty snapshot and no error; history is truncated
// to maxHistory entries.
func (m *Manager) Load(maxHistory int) (Snapshot, error) {
	empty := Snapshot{
		Version:        SnapshotVersion,
		ProviderHealth: make(map[string]health.ProviderHealth),
	}

	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return empty, nil
		}
		return empty, fmt.Errorf("failed to read state file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		m.logger.Warn("state file corrupt, starting fresh",
			slog.String("path", m.path),
			slog.String("error", err.Error()))
		return empty, nil
	}

	if snap.Version != SnapshotVersion {
		m.logger.Warn("state file version mismatch, starting fresh",
			slog.String("path", m.path),
			slog.String("version", snap.Version))
		return empty, nil
	}

	if maxHistory > 0 && len(snap.PerformanceRecords) > maxHistory {
		snap.PerformanceRecords = snap.PerformanceRecords[len(snap.PerformanceRecords)-maxHistory:]
	}
	if snap.ProviderHealth == nil {
		snap.ProviderHealth = make(map[string]health.ProviderHealth)
	}
	return snap, nil
}

// ScheduleSave requests a snapshot write. Writes within the throttle
// window are deferred; repeated calls cancel and reschedule the pending
// write so bursts of mutations coalesce into one file rewrite.
func (m *Manager) ScheduleSave() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || m.collect == nil {
		return
	}

	if m.pending != nil {
		m.pending.Stop()
	}

	delay := m.throttle - time.Since(m.lastSave)
	if delay < 0 {
		delay = 0
	}
	m.pending = time.AfterFunc(delay, m.flush)
}

// Flush writes the snapshot immediately, cancelling any pending write.
// Used on shutdown.
func (m *Manager) Flush() {
	m.mu.Lock()
	if m.pending != nil {
		m.pending.Stop()
		m.pending = nil
	}
	collect := m.collect
	m.mu.Unlock()

	if collect != nil {
		m.write(collect())
	}
}

// Close flushes pending state and stops future saves.
func (m *Manager) Close() {
	m.Flush()

	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}

// flush is the deferred-save timer callback.
func (m *Manager) flush() {
	m.mu.Lock()
	m.pending = nil
	collect := m.collect
	closed := m.closed
	m.mu.Unlock()

	if closed || collect == nil {
		return
	}
	m.write(collect())
}

// write persists the snapshot atomically. Failures are logged and
// ignored; orchestration continues on in-memory state.
func (m *Manager) write(snap Snapshot) {
	snap.Version = SnapshotVersion
	snap.LastUpdated = time.Now().UTC()

	if err := m.writeFile(snap); err != nil {
		m.logger.Warn("state save failed",
			slog.String("path", m.path),
			slog.String("error", err.Error()))
		return
	}

	m.mu.Lock()
	m.lastSave = time.Now()
	m.mu.Unlock()
}

// writeFile serializes and atomically replaces the snapshot file.
func (m *Manager) writeFile(snap Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	if err := m.lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock state file: %w", err)
	}
	defer func() { _ = m.lock.Unlock() }()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(m.path), ".omnisearch-state-*")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp state file: %w", err)
	}

	if err := os.Rename(tmpName, m.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}
