// Package controller runs the call lifecycle: it owns the single active
// session, drives the listen/respond/speak loop and fans state changes out
// to subscribers.
package controller

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/RohitNitwal/AI-cold-call-agent-i/internal/agent"
	"github.com/RohitNitwal/AI-cold-call-agent-i/internal/calllog"
	"github.com/RohitNitwal/AI-cold-call-agent-i/internal/scenario"
)

type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateEnded   State = "ended"
)

type EventType string

const (
	EventState      EventType = "state"
	EventStatus     EventType = "status"
	EventTranscript EventType = "transcript"
	EventInfo       EventType = "info"
	EventSummary    EventType = "summary"
)

// Event is one item on the live feed.
type Event struct {
	Type      EventType   `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Text      string      `json:"text,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
}

var (
	ErrCallInProgress = errors.New("a call is already in progress")
	ErrNoActiveCall   = errors.New("no active call")
	ErrListening      = errors.New("already listening")
)

// exitKeywords end the call when they are the entire utterance. "bye now"
// does not match.
var exitKeywords = map[string]bool{
	"bye":      true,
	"goodbye":  true,
	"end call": true,
	"stop":     true,
	"end":      true,
	"quit":     true,
	"exit":     true,
}

// isExitKeyword matches case-insensitively regardless of whether the speech
// layer already lowercased the transcript.
func isExitKeyword(utterance string) bool {
	return exitKeywords[strings.ToLower(utterance)]
}

// Speech is the voice I/O surface the controller drives.
type Speech interface {
	Recognize(ctx context.Context, timeout, phraseLimit time.Duration) string
	Speak(text string)
	IsListening() bool
}

// Uploader archives a saved log file. May be absent.
type Uploader interface {
	UploadFile(path string) error
}

type Options struct {
	LogDir        string
	ListenTimeout time.Duration
	PhraseLimit   time.Duration
	// TurnPause is the breather between an agent reply and the next listen.
	TurnPause time.Duration
}

// Controller holds at most one active call at a time.
type Controller struct {
	opts     Options
	gen      agent.Generator
	store    *scenario.Store
	speech   Speech
	uploader Uploader
	onEvent  func(Event)

	mu          sync.Mutex
	state       State
	sessionID   string
	session     *agent.Session
	logger      *calllog.Logger
	cancel      context.CancelFunc
	lastSummary *calllog.Summary
}

// New wires a Controller. uploader and onEvent may be nil.
func New(opts Options, gen agent.Generator, store *scenario.Store, speech Speech, uploader Uploader, onEvent func(Event)) *Controller {
	if opts.TurnPause <= 0 {
		opts.TurnPause = time.Second
	}
	return &Controller{
		opts:     opts,
		gen:      gen,
		store:    store,
		speech:   speech,
		uploader: uploader,
		onEvent:  onEvent,
		state:    StateIdle,
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Summary returns the wrap-up of the last finished call, or nil before any
// call has ended.
func (c *Controller) Summary() *calllog.Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSummary
}

// Start begins a call for the given scenario and returns the session id.
// The conversation loop runs on its own goroutine until an exit keyword or
// an explicit End.
func (c *Controller) Start(s scenario.Scenario) (string, error) {
	c.mu.Lock()
	if c.state == StateRunning {
		c.mu.Unlock()
		return "", ErrCallInProgress
	}

	id := uuid.NewString()
	ctxData := c.store.Load(s)
	logger := calllog.New(string(s), c.opts.LogDir)
	session := agent.NewSession(s, ctxData, c.gen, logger, func(msg string) {
		c.emit(Event{Type: EventStatus, SessionID: id, Text: msg})
	})

	loopCtx, cancel := context.WithCancel(context.Background())
	c.state = StateRunning
	c.sessionID = id
	c.session = session
	c.logger = logger
	c.cancel = cancel
	c.mu.Unlock()

	log.Printf("call started: session=%s scenario=%s", id, s)
	c.emit(Event{Type: EventState, SessionID: id, Text: string(StateRunning)})
	c.emit(Event{Type: EventInfo, SessionID: id, Text: ctxData.Describe()})
	c.emit(Event{Type: EventStatus, SessionID: id, Text: "Call Started! Say something..."})

	go c.conversationLoop(loopCtx, id, session)
	return id, nil
}

func (c *Controller) conversationLoop(ctx context.Context, id string, session *agent.Session) {
	opening := scenario.Opening(session.Scenario())
	c.emit(Event{Type: EventTranscript, SessionID: id, Text: "AI: " + opening})
	c.speech.Speak(opening)

	for ctx.Err() == nil {
		userInput := c.speech.Recognize(ctx, c.opts.ListenTimeout, c.opts.PhraseLimit)
		if ctx.Err() != nil {
			return
		}
		if isExitKeyword(userInput) {
			if _, err := c.End(); err != nil && !errors.Is(err, ErrNoActiveCall) {
				log.Printf("end call: %v", err)
			}
			return
		}
		if userInput == "" {
			continue
		}

		c.emit(Event{Type: EventTranscript, SessionID: id, Text: "User: " + userInput})
		reply := session.Respond(ctx, userInput)
		c.emit(Event{Type: EventTranscript, SessionID: id, Text: "AI: " + reply})
		c.speech.Speak(reply)

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.opts.TurnPause):
		}
	}
}

// ManualSpeak triggers one listen/respond exchange outside the loop's own
// cadence. It refuses while a recognition is already in flight and returns
// immediately; the exchange itself runs asynchronously.
func (c *Controller) ManualSpeak() error {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return ErrNoActiveCall
	}
	id := c.sessionID
	session := c.session
	c.mu.Unlock()

	if c.speech.IsListening() {
		return ErrListening
	}

	go func() {
		userInput := c.speech.Recognize(context.Background(), c.opts.ListenTimeout, c.opts.PhraseLimit)
		if userInput == "" {
			return
		}
		if isExitKeyword(userInput) {
			if _, err := c.End(); err != nil && !errors.Is(err, ErrNoActiveCall) {
				log.Printf("end call: %v", err)
			}
			return
		}
		c.emit(Event{Type: EventTranscript, SessionID: id, Text: "User: " + userInput})
		reply := session.Respond(context.Background(), userInput)
		c.emit(Event{Type: EventTranscript, SessionID: id, Text: "AI: " + reply})
		c.speech.Speak(reply)
	}()
	return nil
}

// End stops the active call: the log is saved first, then the closing line
// is spoken so it never lands in the persisted record. A save failure is
// returned but the call still winds down.
func (c *Controller) End() (*calllog.Summary, error) {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return nil, ErrNoActiveCall
	}
	c.state = StateEnded
	id := c.sessionID
	session := c.session
	logger := c.logger
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	cancel()

	path, saveErr := session.Close()
	if saveErr != nil {
		c.emit(Event{Type: EventStatus, SessionID: id, Text: "Error saving conversation: " + saveErr.Error()})
	}

	closing := scenario.Closing(session.Scenario())
	c.emit(Event{Type: EventTranscript, SessionID: id, Text: "AI: " + closing})
	c.speech.Speak(closing)

	if c.uploader != nil && path != "" {
		if err := c.uploader.UploadFile(path); err != nil {
			c.emit(Event{Type: EventStatus, SessionID: id, Text: "Error uploading conversation log: " + err.Error()})
		} else {
			c.emit(Event{Type: EventStatus, SessionID: id, Text: "Conversation log uploaded"})
		}
	}

	summary := logger.Summary()
	c.mu.Lock()
	c.lastSummary = &summary
	c.mu.Unlock()

	log.Printf("call ended: session=%s turns=%d", id, summary.TotalTurns)
	c.emit(Event{Type: EventSummary, SessionID: id, Payload: summary})
	c.emit(Event{Type: EventState, SessionID: id, Text: string(StateEnded)})
	c.emit(Event{Type: EventStatus, SessionID: id, Text: "Call Ended. Thank you!"})
	return &summary, saveErr
}

func (c *Controller) emit(e Event) {
	if c.onEvent != nil {
		c.onEvent(e)
	}
}
