package controller

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/RohitNitwal/AI-cold-call-agent-i/internal/calllog"
	"github.com/RohitNitwal/AI-cold-call-agent-i/internal/scenario"
)

type scriptedSpeech struct {
	mu        sync.Mutex
	script    []string
	spoken    []string
	listening bool
}

func (s *scriptedSpeech) Recognize(ctx context.Context, timeout, phraseLimit time.Duration) string {
	s.mu.Lock()
	if len(s.script) > 0 {
		next := s.script[0]
		s.script = s.script[1:]
		s.mu.Unlock()
		return next
	}
	s.mu.Unlock()
	// script exhausted: behave like silence until the call stops
	select {
	case <-ctx.Done():
	case <-time.After(10 * time.Millisecond):
	}
	return ""
}

func (s *scriptedSpeech) Speak(text string) {
	s.mu.Lock()
	s.spoken = append(s.spoken, text)
	s.mu.Unlock()
}

func (s *scriptedSpeech) IsListening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listening
}

func (s *scriptedSpeech) spokenLines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.spoken))
	copy(out, s.spoken)
	return out
}

type echoGen struct{}

func (echoGen) Generate(ctx context.Context, prompt string) (string, error) {
	return "Theek hai, samajh gayi.", nil
}

type eventSink struct {
	mu     sync.Mutex
	events []Event
}

func (e *eventSink) add(ev Event) {
	e.mu.Lock()
	e.events = append(e.events, ev)
	e.mu.Unlock()
}

func (e *eventSink) ofType(t EventType) []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []Event
	for _, ev := range e.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

type failingUploader struct{ err error }

func (f *failingUploader) UploadFile(path string) error { return f.err }

func newTestController(t *testing.T, speech Speech, uploader Uploader) (*Controller, *eventSink, string) {
	t.Helper()
	logDir := t.TempDir()
	sink := &eventSink{}
	store := scenario.NewStore(t.TempDir(), nil)
	c := New(Options{
		LogDir:        logDir,
		ListenTimeout: 50 * time.Millisecond,
		TurnPause:     time.Millisecond,
	}, echoGen{}, store, speech, uploader, sink.add)
	return c, sink, logDir
}

func waitForState(t *testing.T, c *Controller, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("controller never reached state %q (got %q)", want, c.State())
}

func TestController_ExitKeywordEndsCall(t *testing.T) {
	speech := &scriptedSpeech{script: []string{"hello", "bye"}}
	c, sink, logDir := newTestController(t, speech, nil)

	id, err := c.Start(scenario.Demo)
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("expected a session id")
	}

	waitForState(t, c, StateEnded)

	spoken := speech.spokenLines()
	if len(spoken) < 3 {
		t.Fatalf("expected opening, reply and closing, got %v", spoken)
	}
	if spoken[0] != scenario.Opening(scenario.Demo) {
		t.Fatalf("first line must be the opening, got %q", spoken[0])
	}
	if spoken[len(spoken)-1] != scenario.Closing(scenario.Demo) {
		t.Fatalf("last line must be the closing, got %q", spoken[len(spoken)-1])
	}

	entries, err := os.ReadDir(logDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one saved log, got %d", len(entries))
	}
	rec, err := calllog.Load(filepath.Join(logDir, entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	// "hello" plus its reply; neither the opening nor the closing is a turn
	if len(rec.Turns) != 2 {
		t.Fatalf("expected 2 turns in saved log, got %d", len(rec.Turns))
	}

	if got := sink.ofType(EventSummary); len(got) != 1 {
		t.Fatalf("expected one summary event, got %d", len(got))
	}
}

func TestController_ExitKeywordCaseInsensitive(t *testing.T) {
	// a Speech implementation that does not lowercase transcripts must not
	// defeat exit-keyword matching
	speech := &scriptedSpeech{script: []string{"Bye"}}
	c, _, _ := newTestController(t, speech, nil)

	if _, err := c.Start(scenario.Demo); err != nil {
		t.Fatal(err)
	}
	waitForState(t, c, StateEnded)
}

func TestController_ExitKeywordIsExactMatch(t *testing.T) {
	speech := &scriptedSpeech{script: []string{"bye now"}}
	c, _, _ := newTestController(t, speech, nil)

	if _, err := c.Start(scenario.Demo); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	if c.State() != StateRunning {
		t.Fatalf("\"bye now\" must not end the call, state=%q", c.State())
	}
	if _, err := c.End(); err != nil {
		t.Fatal(err)
	}
}

func TestController_StartWhileRunningFails(t *testing.T) {
	speech := &scriptedSpeech{}
	c, _, _ := newTestController(t, speech, nil)

	if _, err := c.Start(scenario.Payment); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Start(scenario.Demo); !errors.Is(err, ErrCallInProgress) {
		t.Fatalf("expected ErrCallInProgress, got %v", err)
	}
	if _, err := c.End(); err != nil {
		t.Fatal(err)
	}
	// a fresh call may start after the previous one ended
	if _, err := c.Start(scenario.Demo); err != nil {
		t.Fatal(err)
	}
	c.End()
}

func TestController_EndWithoutCall(t *testing.T) {
	c, _, _ := newTestController(t, &scriptedSpeech{}, nil)
	if _, err := c.End(); !errors.Is(err, ErrNoActiveCall) {
		t.Fatalf("expected ErrNoActiveCall, got %v", err)
	}
	if err := c.ManualSpeak(); !errors.Is(err, ErrNoActiveCall) {
		t.Fatalf("expected ErrNoActiveCall, got %v", err)
	}
}

func TestController_ManualSpeakRefusesWhileListening(t *testing.T) {
	speech := &scriptedSpeech{listening: true}
	c, _, _ := newTestController(t, speech, nil)

	if _, err := c.Start(scenario.Interview); err != nil {
		t.Fatal(err)
	}
	defer c.End()

	if err := c.ManualSpeak(); !errors.Is(err, ErrListening) {
		t.Fatalf("expected ErrListening, got %v", err)
	}
}

func TestController_SummaryAfterEnd(t *testing.T) {
	speech := &scriptedSpeech{script: []string{"haan boliye"}}
	c, _, _ := newTestController(t, speech, nil)

	if c.Summary() != nil {
		t.Fatal("summary must be nil before any call ends")
	}
	if _, err := c.Start(scenario.Demo); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	sum, err := c.End()
	if err != nil {
		t.Fatal(err)
	}
	if sum.TotalTurns != 2 {
		t.Fatalf("expected 2 turns, got %d", sum.TotalTurns)
	}
	if got := c.Summary(); got == nil || got.TotalTurns != sum.TotalTurns {
		t.Fatalf("stored summary mismatch: %+v", got)
	}
}

func TestController_UploadFailureIsAdvisory(t *testing.T) {
	speech := &scriptedSpeech{}
	up := &failingUploader{err: errors.New("bucket gone")}
	c, sink, _ := newTestController(t, speech, up)

	if _, err := c.Start(scenario.Demo); err != nil {
		t.Fatal(err)
	}
	if _, err := c.End(); err != nil {
		t.Fatalf("upload failure must not fail End: %v", err)
	}

	var found bool
	for _, ev := range sink.ofType(EventStatus) {
		if strings.Contains(ev.Text, "Error uploading conversation log") {
			found = true
		}
	}
	if !found {
		t.Fatal("expected an upload-failure advisory event")
	}
}
