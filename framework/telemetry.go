package framework

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

// EventType categorizes telemetry events.
type EventType string

const (
	EventIndexBuilt      EventType = "index_built"
	EventRootMissing     EventType = "root_missing"
	EventFileModified    EventType = "file_modified"
	EventFileSkipped     EventType = "file_skipped"
	EventFileFailed      EventType = "file_failed"
	EventMalformedBlock  EventType = "malformed_custom_block"
	EventLateInclude     EventType = "late_include"
	EventMissingCategory EventType = "missing_category"
	EventLongFilename    EventType = "long_filename"
	EventRunSummary      EventType = "run_summary"
	EventToolOutput      EventType = "tool_output"
)

// Event captures structured telemetry data.
type Event struct {
	Type      EventType              `json:"type"`
	Path      string                 `json:"path,omitempty"`
	Line      int                    `json:"line,omitempty"`
	Message   string                 `json:"message,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// IsWarning reports whether the event should be surfaced as a warning.
func (e Event) IsWarning() bool {
	switch e.Type {
	case EventRootMissing, EventFileFailed, EventMalformedBlock, EventLateInclude, EventMissingCategory, EventLongFilename:
		return true
	}
	return false
}

// Telemetry receives run events emitted by the indexer and the rewrite
// pipeline. The CLI fans them out to the console and the debug log; tests
// usually collect them with a RecordingTelemetry.
type Telemetry interface {
	Emit(event Event)
}

// Emit sends the event to sink, stamping it when the caller did not.
// A nil sink drops the event.
func Emit(sink Telemetry, event Event) {
	if sink == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	sink.Emit(event)
}

// MultiplexTelemetry broadcasts events to multiple sinks.
type MultiplexTelemetry struct {
	Sinks []Telemetry
}

// Emit forwards the event to all registered sinks.
func (m MultiplexTelemetry) Emit(event Event) {
	for _, s := range m.Sinks {
		if s != nil {
			s.Emit(event)
		}
	}
}

// JSONFileTelemetry writes events as newline-delimited JSON to a file.
// The file is truncated on open so it only ever holds the latest run.
type JSONFileTelemetry struct {
	path string
	file *os.File
	enc  *json.Encoder
	mu   sync.Mutex
}

// NewJSONFileTelemetry opens (or creates) the log file.
func NewJSONFileTelemetry(path string) (*JSONFileTelemetry, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONFileTelemetry{
		path: path,
		file: f,
		enc:  json.NewEncoder(f),
	}, nil
}

// Path returns the file the events are written to.
func (j *JSONFileTelemetry) Path() string {
	return j.path
}

// Emit writes the JSON record.
func (j *JSONFileTelemetry) Emit(event Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.enc != nil {
		_ = j.enc.Encode(event)
	}
}

// Close releases the file handle.
func (j *JSONFileTelemetry) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file != nil {
		err := j.file.Close()
		j.file = nil
		j.enc = nil
		return err
	}
	return nil
}

// RecordingTelemetry keeps every event in memory.
type RecordingTelemetry struct {
	mu     sync.Mutex
	events []Event
}

// Emit stores the event.
func (r *RecordingTelemetry) Emit(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events.
func (r *RecordingTelemetry) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfType filters the recorded events.
func (r *RecordingTelemetry) OfType(eventType EventType) []Event {
	var out []Event
	for _, ev := range r.Events() {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}
