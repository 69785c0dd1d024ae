// Package oracle wraps the language-inference backends used for classification
// and summarization. Every backend answers one prompt with one text response.
package oracle

import (
	"context"
	"fmt"
	"strings"
)

type Oracle interface {
	Generate(ctx context.Context, model string, prompt string) (string, error)
}

type Backend string

const (
	BackendOllama    Backend = "ollama"
	BackendOpenAI    Backend = "openai"
	BackendAnthropic Backend = "anthropic"
)

func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(BackendOllama):
		return BackendOllama, nil
	case string(BackendOpenAI):
		return BackendOpenAI, nil
	case string(BackendAnthropic):
		return BackendAnthropic, nil
	default:
		return "", fmt.Errorf("unknown oracle backend: %s", s)
	}
}
