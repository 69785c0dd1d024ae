package oracle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type ollamaError struct {
	Error string `json:"error"`
}

// Ollama calls the /api/generate endpoint of an Ollama server without streaming.
type Ollama struct {
	client *resty.Client
}

var _ Oracle = (*Ollama)(nil)

func NewOllama(baseURL string) *Ollama {
	return &Ollama{
		client: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(5 * time.Minute), // local models can be slow on first load
	}
}

func (o *Ollama) Generate(ctx context.Context, model string, prompt string) (string, error) {
	var out generateResponse
	var apiErr ollamaError
	resp, err := o.client.R().
		SetContext(ctx).
		SetBody(generateRequest{Model: model, Prompt: prompt, Stream: false}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/api/generate")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		if apiErr.Error != "" {
			return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode(), apiErr.Error)
		}
		return "", fmt.Errorf("ollama returned status %d", resp.StatusCode())
	}
	return out.Response, nil
}
