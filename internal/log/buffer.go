package log

import (
	"sync"
	"time"
)

var logBuffer *LogBuffer
var logBufferOnce sync.Once

// LogEntry is one captured log line
type LogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Caller    string         `json:"caller,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// LogBuffer is a fixed-size ring of recent log entries
type LogBuffer struct {
	mu      sync.RWMutex
	entries []LogEntry
	next    int
	full    bool
}

// NewLogBuffer creates a buffer that keeps the last size entries
func NewLogBuffer(size int) *LogBuffer {
	if size < 1 {
		size = 1
	}
	return &LogBuffer{entries: make([]LogEntry, size)}
}

// GetLogBuffer returns the application log buffer, creating it if necessary
func GetLogBuffer() *LogBuffer {
	logBufferOnce.Do(func() {
		logBuffer = NewLogBuffer(500)
	})
	return logBuffer
}

// AddEntry appends an entry, overwriting the oldest once the buffer is full
func (b *LogBuffer) AddEntry(e LogEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[b.next] = e
	b.next = (b.next + 1) % len(b.entries)
	if b.next == 0 {
		b.full = true
	}
}

// GetEntries returns up to limit of the most recent entries, oldest first.
// A limit of zero or less returns everything held.
func (b *LogBuffer) GetEntries(limit int) []LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var ordered []LogEntry
	if b.full {
		ordered = append(ordered, b.entries[b.next:]...)
	}
	ordered = append(ordered, b.entries[:b.next]...)

	if limit > 0 && len(ordered) > limit {
		ordered = ordered[len(ordered)-limit:]
	}
	return ordered
}

// Len reports how many entries are held
func (b *LogBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.full {
		return len(b.entries)
	}
	return b.next
}
