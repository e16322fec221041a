// Package auditlog records envkey operations (set, rm, rotate, member
// add/rm/grant/revoke/update) as structured JSON lines, the trail the log
// command renders. It never records plaintext values or ciphertexts, only
// the operation's metadata.
package auditlog

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Event is one recorded operation.
type Event struct {
	Time   time.Time `json:"time"`
	Op     string    `json:"op"`
	Actor  string    `json:"actor"`
	Env    string    `json:"env,omitempty"`
	Key    string    `json:"key,omitempty"`
	Detail string    `json:"detail,omitempty"`
}

// Log appends Events to a JSON-lines file, writing through a zerolog
// logger configured for structured (JSON) or console output.
type Log struct {
	path   string
	logger zerolog.Logger
	file   *os.File
}

// DefaultPath returns the platform-specific per-user audit log path,
// envkey/audit.log under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "envkey", "audit.log"), nil
}

// Open appends to path (or the default path if empty), creating parent
// directories as needed. console selects zerolog's human-readable
// ConsoleWriter format instead of raw JSON lines; either way the output
// goes to the file at path.
func Open(path string, console bool) (*Log, error) {
	if path == "" {
		def, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = def
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}

	var logger zerolog.Logger
	if console {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: f, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(f).With().Timestamp().Logger()
	}
	return &Log{path: path, logger: logger, file: f}, nil
}

// Close flushes and closes the underlying file.
func (l *Log) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Record writes one Event.
func (l *Log) Record(ev Event) {
	if l == nil {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}
	e := l.logger.Info().
		Str("op", ev.Op).
		Str("actor", ev.Actor)
	if ev.Env != "" {
		e = e.Str("env", ev.Env)
	}
	if ev.Key != "" {
		e = e.Str("key", ev.Key)
	}
	if ev.Detail != "" {
		e = e.Str("detail", ev.Detail)
	}
	e.Msg(ev.Op)
}

// ReadAll parses path as JSON lines (zerolog's default encoding) back into
// Events, newest last, for the log command to render. Lines it cannot
// parse (e.g. console-formatted entries from a -v run) are skipped.
func ReadAll(path string) ([]Event, error) {
	if path == "" {
		def, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = def
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var events []Event
	for _, line := range bytes.Split(data, []byte("\n")) {
		var raw map[string]any
		if err := json.Unmarshal(line, &raw); err != nil {
			continue
		}
		ev, ok := eventFromRaw(raw)
		if ok {
			events = append(events, ev)
		}
	}
	return events, nil
}

func eventFromRaw(raw map[string]any) (Event, bool) {
	op, _ := raw["op"].(string)
	if op == "" {
		return Event{}, false
	}
	ev := Event{Op: op}
	if ts, ok := raw["time"].(string); ok {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			ev.Time = t
		}
	}
	ev.Actor, _ = raw["actor"].(string)
	ev.Env, _ = raw["env"].(string)
	ev.Key, _ = raw["key"].(string)
	ev.Detail, _ = raw["detail"].(string)
	return ev, true
}

func newLineReader(data []byte) *jsonLinesReader {
	return &jsonLinesReader{data: data}
}

// jsonLinesReader adapts a JSON-lines byte slice to io.Reader so
// json.Decoder's streaming mode can pull one object at a time.
type jsonLinesReader struct {
	data []byte
	pos  int
}

func (r *jsonLinesReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}
