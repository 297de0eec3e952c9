package agent

import (
	"context"
	"math/rand"
	"strings"
	"sync"

	"github.com/RohitNitwal/AI-cold-call-agent-i/internal/scenario"
)

const noResponseText = "Sorry, I couldn't generate a response."

// Session drives one cold-call conversation: it owns the history, renders
// prompts and turns generation failures into canned Hinglish fallbacks so a
// call degrades instead of dying.
type Session struct {
	scenario scenario.Scenario
	context  *scenario.Context
	gen      Generator
	logger   TurnLogger
	onStatus func(msg string)

	mu      sync.Mutex
	history []string // rendered "User: ..." / "AI: ..." lines, append-only
}

// NewSession constructs a Session for one call.
func NewSession(s scenario.Scenario, c *scenario.Context, gen Generator, logger TurnLogger, onStatus func(string)) *Session {
	return &Session{
		scenario: s,
		context:  c,
		gen:      gen,
		logger:   logger,
		onStatus: onStatus,
	}
}

// Scenario returns the scenario this session was created for.
func (s *Session) Scenario() scenario.Scenario { return s.scenario }

// Context returns the scenario context snapshot the session runs with.
func (s *Session) Context() *scenario.Context { return s.context }

// History returns a copy of the rendered conversation lines.
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// Respond generates the agent reply for one user utterance. An empty
// utterance contributes no user turn but still yields an agent turn. Errors
// from the generator never escape: the scenario fallback sentence comes back
// instead and the error is surfaced as an advisory.
func (s *Session) Respond(ctx context.Context, userInput string) string {
	s.status("Thinking...")

	if userInput != "" {
		s.mu.Lock()
		s.history = append(s.history, "User: "+userInput)
		s.mu.Unlock()
		s.logger.LogTurn("user", userInput)
	}

	prompt := scenario.BuildPrompt(s.scenario, s.context, s.History(), userInput)

	reply, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		s.status("Error generating response: " + err.Error())
		return scenario.Fallback(s.scenario)
	}

	reply = stripRoleLabels(reply)
	if reply == "" {
		reply = noResponseText
	}

	s.mu.Lock()
	s.history = append(s.history, "AI: "+reply)
	s.mu.Unlock()
	s.logger.LogTurn("ai", reply)

	return reply
}

// stripRoleLabels removes leading "AI:" / "Agent:" artifacts models
// sometimes echo back from the prompt's history section.
func stripRoleLabels(text string) string {
	text = strings.TrimSpace(text)
	for {
		trimmed := text
		for _, label := range []string{"AI:", "Agent:"} {
			trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, label))
		}
		if trimmed == text {
			return text
		}
		text = trimmed
	}
}

// Close builds the end-of-call metadata, persists the conversation log and
// returns the saved log's path. Persistence errors propagate.
func (s *Session) Close() (string, error) {
	s.mu.Lock()
	pairs := len(s.history) / 2
	s.mu.Unlock()

	metadata := map[string]interface{}{
		"scenario":      string(s.scenario),
		"customer_data": s.context.Customer,
		"turns_count":   pairs,
	}

	switch s.scenario {
	case scenario.Demo:
		metadata["job_data"] = s.context.Job
	case scenario.Payment:
		metadata["invoice_data"] = s.context.Invoice
	case scenario.Interview:
		// Placeholder scoring: uninformed random integers, kept as-is until a
		// real rubric exists.
		metadata["candidate_scoring"] = map[string]int{
			"communication":   rand.Intn(10) + 1,
			"technical":       rand.Intn(10) + 1,
			"problem_solving": rand.Intn(10) + 1,
		}
	}

	path, err := s.logger.Save(metadata)
	if err != nil {
		return "", err
	}
	s.status("Conversation log saved to " + path)
	return path, nil
}

func (s *Session) status(msg string) {
	if s.onStatus != nil {
		s.onStatus(msg)
	}
}
