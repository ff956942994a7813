// Package telemetry records local usage analytics for the beam CLI.
// Privacy-first: no user ID, no message payloads, no channel names.
package telemetry

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Event represents a single anonymous usage event.
type Event struct {
	Timestamp  time.Time `json:"ts"`
	Command    string    `json:"cmd"`
	DurationMs int64     `json:"ms"`
	ExitCode   int       `json:"exit"`
	Shell      bool      `json:"shell,omitempty"`
}

// Store manages the local telemetry store (~/.beam/telemetry.jsonl).
type Store struct {
	Path    string
	MaxSize int64 // default 10MB
}

// DefaultStore returns a Store at the default location.
func DefaultStore() *Store {
	home, _ := os.UserHomeDir()
	return &Store{
		Path:    filepath.Join(home, ".beam", "telemetry.jsonl"),
		MaxSize: 10 * 1024 * 1024,
	}
}

// Enabled reports whether recording is active. BEAM_NO_TELEMETRY disables it.
func Enabled() bool {
	return os.Getenv("BEAM_NO_TELEMETRY") == ""
}

// Record appends an event to the local store. Best-effort: all failures are
// swallowed so telemetry can never break a command.
func (s *Store) Record(e Event) {
	if !Enabled() {
		return
	}
	if fi, err := os.Stat(s.Path); err == nil && s.MaxSize > 0 && fi.Size() > s.MaxSize {
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return
	}
	f, err := os.OpenFile(s.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	f.Write(append(data, '\n'))
}

// ReadAll returns every recorded event. Malformed lines are skipped.
func (s *Store) ReadAll() ([]Event, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var events []Event
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e Event
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			continue
		}
		events = append(events, e)
	}
	return events, sc.Err()
}
