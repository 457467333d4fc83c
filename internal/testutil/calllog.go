package testutil

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// CallLogEntry is the YAML form of a CallRecord.
type CallLogEntry struct {
	Task      string `yaml:"task"`
	Method    string `yaml:"method"`
	Timestamp string `yaml:"timestamp"`
}

// WriteFile dumps the log as YAML, which helps when inspecting the call
// order of a failing scheduling test.
func (l *CallLog) WriteFile(path string) error {
	calls := l.Calls()
	entries := make([]CallLogEntry, 0, len(calls))
	for _, c := range calls {
		entries = append(entries, CallLogEntry{
			Task:      c.TaskID,
			Method:    c.Method,
			Timestamp: c.Timestamp.Format(time.RFC3339Nano),
		})
	}

	data, err := yaml.Marshal(map[string]any{"entries": entries})
	if err != nil {
		return fmt.Errorf("marshaling call log to YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing call log to %s: %w", path, err)
	}
	return nil
}

// ReadCallLog loads a log written by WriteFile.
func ReadCallLog(path string) ([]CallRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading call log from %s: %w", path, err)
	}

	var doc struct {
		Entries []CallLogEntry `yaml:"entries"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling call log YAML: %w", err)
	}

	records := make([]CallRecord, 0, len(doc.Entries))
	for i, e := range doc.Entries {
		ts, err := time.Parse(time.RFC3339Nano, e.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("entry %d: parsing timestamp %q: %w", i, e.Timestamp, err)
		}
		records = append(records, CallRecord{TaskID: e.Task, Method: e.Method, Timestamp: ts})
	}
	return records, nil
}
