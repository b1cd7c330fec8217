package chat

import (
	"context"
	"strings"
)

// Generator produces an assistant reply for a conversation, emitting text
// increments as they become available. It returns the full reply.
type Generator interface {
	Generate(ctx context.Context, history []Message, emit func(delta string) error) (string, error)
}

// EchoGenerator is the built-in generator used when no model backend is
// configured. It restates the last user message word by word, which keeps the
// streaming path exercisable without external services.
type EchoGenerator struct{}

// Generate implements Generator.
func (EchoGenerator) Generate(ctx context.Context, history []Message, emit func(delta string) error) (string, error) {
	var last string
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == RoleUser {
			last = history[i].Content
			break
		}
	}

	var b strings.Builder
	words := strings.Fields("You said: " + last)
	for i, word := range words {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		chunk := word
		if i < len(words)-1 {
			chunk += " "
		}
		if err := emit(chunk); err != nil {
			return "", err
		}
		b.WriteString(chunk)
	}
	return b.String(), nil
}
