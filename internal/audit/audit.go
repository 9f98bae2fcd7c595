package audit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Entry represents a single audit log entry: one import or export run
// against a target instance.
type Entry struct {
	Timestamp string `json:"ts"` // RFC3339 with microseconds.
	Operation string `json:"op"` // import | export | decrypt | split.
	Target    string `json:"target,omitempty"`
	DryRun    bool   `json:"dry_run,omitempty"`

	// Optional fields depending on operation.
	Created int `json:"created,omitempty"` // For import.
	Updated int `json:"updated,omitempty"` // For import.
	Failed  int `json:"failed,omitempty"`  // For import.
	Written int `json:"written,omitempty"` // For export/decrypt/split.
	Pruned  int `json:"pruned,omitempty"`  // For export.
}

// Log appends an entry to the audit log under the data root.
// If logging fails, the operation is not affected; a sync run should never
// fail just because its audit record could not be written.
func Log(root string, entry Entry) {
	if root == "" {
		return
	}
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}

	dir := filepath.Join(root, ".n8nsync")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return
	}

	// #nosec G306 -- the audit log is tracked alongside the data files.
	f, err := os.OpenFile(LogPath(root), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	_, _ = f.Write(append(data, '\n'))
}

// LogPath returns the path to the audit log file under the data root.
func LogPath(root string) string {
	return filepath.Join(root, ".n8nsync", "audit.jsonl")
}

// ReadEntries reads all entries from the audit log.
// Returns an empty slice if the log doesn't exist.
func ReadEntries(root string) ([]Entry, error) {
	data, err := os.ReadFile(LogPath(root))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ParseEntries(data), nil
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) []Entry {
	var entries []Entry
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}
