package vm

import "github.com/tickvm/tickvm/sourcemap"

// TraceEntry is one recorded tick, grounded on vm/statistics.go and
// vm/flag_trace.go's bounded-history instrumentation.
type TraceEntry struct {
	PC           int               `json:"pc"`
	Instruction  string            `json:"instruction"`
	Location     sourcemap.Location `json:"location"`
	HasLocation  bool              `json:"has_location"`
	StatusBefore Status            `json:"status_before"`
	StatusAfter  Status            `json:"status_after"`
}

// executionTrace is a fixed-capacity ring buffer of the most recent ticks.
type executionTrace struct {
	capacity int
	entries  []TraceEntry
}

func newExecutionTrace(capacity int) *executionTrace {
	if capacity <= 0 {
		capacity = 1
	}
	return &executionTrace{capacity: capacity}
}

func (t *executionTrace) record(entry TraceEntry) {
	t.entries = append(t.entries, entry)
	if len(t.entries) > t.capacity {
		t.entries = t.entries[len(t.entries)-t.capacity:]
	}
}

func (t *executionTrace) snapshot() []TraceEntry {
	out := make([]TraceEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// EnableTrace turns on ambient tick tracing with a bounded ring buffer of
// the given capacity, replacing any previously recorded history.
func (v *VM) EnableTrace(capacity int) {
	v.trace = newExecutionTrace(capacity)
}

// DisableTrace turns off tick tracing and discards recorded history.
func (v *VM) DisableTrace() {
	v.trace = nil
}

// Trace returns a snapshot of the most recent ticks, oldest first. Empty
// if tracing is not enabled.
func (v *VM) Trace() []TraceEntry {
	if v.trace == nil {
		return nil
	}
	return v.trace.snapshot()
}
