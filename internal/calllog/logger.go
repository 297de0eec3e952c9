package calllog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Turn is one utterance by either side, timestamped at append time.
// Turns are never mutated after creation.
type Turn struct {
	Timestamp float64 `json:"timestamp"`
	Speaker   string  `json:"speaker"`
	Text      string  `json:"text"`
}

// Record is the persisted shape of one complete conversation. It is written
// once at session end and never updated.
type Record struct {
	Scenario  string                 `json:"scenario"`
	StartTime float64                `json:"start_time"`
	EndTime   float64                `json:"end_time"`
	Duration  float64                `json:"duration"`
	Metadata  map[string]interface{} `json:"metadata"`
	Turns     []Turn                 `json:"turns"`
}

// Summary holds the trivial structural metrics for a conversation. The key
// takeaways line is a fixed advisory string, not derived from content.
type Summary struct {
	TotalTurns      int     `json:"total_turns"`
	DurationSeconds float64 `json:"duration_seconds"`
	KeyTakeaways    string  `json:"key_takeaways"`
}

const keyTakeaways = "Focus on active listening, structured evaluation, and clear communication."

// Logger accumulates timestamped turns for one session and persists them as
// a JSON record at session end. The file name embeds scenario and start
// epoch so concurrent-in-time sessions never collide.
type Logger struct {
	scenario  string
	dir       string
	startTime time.Time

	mu    sync.Mutex
	turns []Turn
}

// New creates a Logger for one session of the given scenario, writing under
// dir when saved.
func New(scenario, dir string) *Logger {
	return &Logger{
		scenario:  scenario,
		dir:       dir,
		startTime: time.Now(),
	}
}

// LogTurn appends one timestamped entry. The speaker label is recorded
// as supplied; no validation is applied.
func (l *Logger) LogTurn(speaker, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = append(l.turns, Turn{
		Timestamp: unixSeconds(time.Now()),
		Speaker:   speaker,
		Text:      text,
	})
}

// FileName returns the log file name for this session.
func (l *Logger) FileName() string {
	return fmt.Sprintf("conversation_%s_%d.json", l.scenario, l.startTime.Unix())
}

// Save writes the full record and returns the path it was written to.
// Persistence failures propagate to the caller; this is the one error path
// that is not absorbed.
func (l *Logger) Save(metadata map[string]interface{}) (string, error) {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	now := time.Now()

	l.mu.Lock()
	turns := make([]Turn, len(l.turns))
	copy(turns, l.turns)
	l.mu.Unlock()

	rec := Record{
		Scenario:  l.scenario,
		StartTime: unixSeconds(l.startTime),
		EndTime:   unixSeconds(now),
		Duration:  now.Sub(l.startTime).Seconds(),
		Metadata:  metadata,
		Turns:     turns,
	}

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return "", fmt.Errorf("create log dir: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal log record: %w", err)
	}

	path := filepath.Join(l.dir, l.FileName())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write log file: %w", err)
	}
	return path, nil
}

// Summary reports turn count and elapsed time so far.
func (l *Logger) Summary() Summary {
	l.mu.Lock()
	n := len(l.turns)
	l.mu.Unlock()
	return Summary{
		TotalTurns:      n,
		DurationSeconds: time.Since(l.startTime).Seconds(),
		KeyTakeaways:    keyTakeaways,
	}
}

// Load reads a previously saved record back from disk.
func Load(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse log record: %w", err)
	}
	return &rec, nil
}

// List returns the saved log file names under dir, newest name ordering left
// to the caller.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if filepath.Ext(e.Name()) == ".json" {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
