package synthetic

import (
	"context"
	"fmt"
	"slices"
)

// Generator produces the machine-written counterpart of a player's answer.
type Generator interface {
	Generate(ctx context.Context, userID, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, userID, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, userID, prompt string) (string, error) {
	return f(ctx, userID, prompt)
}

// ReversePrompt is the placeholder generator: it answers with the prompt
// reversed. It never fails.
type ReversePrompt struct{}

func (ReversePrompt) Generate(_ context.Context, userID, prompt string) (string, error) {
	runes := []rune(prompt)
	slices.Reverse(runes)
	return fmt.Sprintf("AI response for %s: %s", userID, string(runes)), nil
}
