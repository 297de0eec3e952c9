package agent

import "context"

// Generator is a minimal interface to generate a single response for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// TurnLogger receives every user/agent utterance for persistence.
type TurnLogger interface {
	LogTurn(speaker, text string)
	Save(metadata map[string]interface{}) (string, error)
}
