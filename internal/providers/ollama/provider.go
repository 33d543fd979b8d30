// internal/providers/ollama/provider.go
// Package ollama provides a CompletionProvider backed by Ollama-compatible HTTP endpoints.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/arxa-ai/arxa/internal/appconfig"
	"github.com/arxa-ai/arxa/internal/logging"
	"github.com/arxa-ai/arxa/internal/providers"
)

// Provider implements providers.CompletionProvider using the Ollama HTTP API.
type Provider struct {
	client  *http.Client
	timeout time.Duration
	debug   bool
}

// New constructs a Provider configured with the application's request timeout.
func New(cfg *appconfig.Config) *Provider {
	timeout := cfg.RequestTimeout()
	return &Provider{
		client: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{ForceAttemptHTTP2: false},
		},
		timeout: timeout,
		debug:   cfg.Debug,
	}
}

// streamChunk defines the structure of a single chunk in a streaming response.
// The same shape is returned whole when stream is false.
type streamChunk struct {
	Model   string `json:"model"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done            bool  `json:"done"`
	TotalDuration   int64 `json:"total_duration"`
	PromptEvalCount int   `json:"prompt_eval_count"`
	EvalCount       int   `json:"eval_count"`
}

// Complete issues a non-streaming chat request and returns the full completion text.
func (p *Provider) Complete(ctx context.Context, req providers.Request) (string, error) {
	resp, err := p.send(ctx, req, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	logging.LogRequest("LLM->ARXA", req.Host.Name, req.Model, body)

	var result streamChunk
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("ollama: decode chat response: %w", err)
	}
	return result.Message.Content, nil
}

// Stream issues a streaming chat request and forwards output to the provided callbacks.
func (p *Provider) Stream(ctx context.Context, req providers.Request, callbacks providers.StreamCallbacks) error {
	resp, err := p.send(ctx, req, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	decoder := json.NewDecoder(resp.Body)
	var final streamChunk
	for {
		var chunk streamChunk
		if err := decoder.Decode(&chunk); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("ollama: decode stream chunk: %w", err)
		}
		if p.debug {
			if data, err := json.Marshal(chunk); err == nil {
				logging.LogRequest("LLM->ARXA", req.Host.Name, req.Model, data)
			}
		}

		if chunk.Message.Content != "" && callbacks.OnChunk != nil {
			role := chunk.Message.Role
			if role == "" {
				role = "assistant"
			}
			if err := callbacks.OnChunk(providers.ChatMessage{Role: role, Content: chunk.Message.Content}); err != nil {
				return err
			}
		}
		if chunk.Done {
			final = chunk
			break
		}
	}

	if callbacks.OnComplete != nil {
		modelName := final.Model
		if modelName == "" {
			modelName = req.Model
		}
		meta := providers.Metadata{
			Model:         modelName,
			CreatedAt:     time.Now(),
			Done:          true,
			TotalDuration: final.TotalDuration,
			PromptTokens:  final.PromptEvalCount,
			OutputTokens:  final.EvalCount,
		}
		if err := callbacks.OnComplete(meta); err != nil {
			return err
		}
	}
	return nil
}

// Close releases provider resources. The shared HTTP client needs no cleanup.
func (p *Provider) Close() error { return nil }

// send posts to /api/chat and returns the raw response for the caller to consume.
func (p *Provider) send(ctx context.Context, req providers.Request, stream bool) (*http.Response, error) {
	payload := map[string]any{
		"model":    req.Model,
		"messages": providers.WithSystemPrompt(req),
		"options":  buildOptions(providers.EffectiveParameters(req)),
		"stream":   stream,
	}
	if req.JSONMode {
		payload["format"] = "json"
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	logging.LogRequest("ARXA->LLM", req.Host.Name, req.Model, body)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.Host.URL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		cancel()
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		cancel()
		logging.LogRequest("LLM->ARXA", req.Host.Name, req.Model, raw)
		return nil, fmt.Errorf("ollama: /api/chat returned %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	// The cancel releases the timeout once the body is fully read or abandoned.
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	c.cancel()
	return c.ReadCloser.Close()
}

func buildOptions(params appconfig.Parameters) map[string]any {
	options := map[string]any{}
	if params.TopK != nil {
		options["top_k"] = *params.TopK
	}
	if params.TopP != nil {
		options["top_p"] = *params.TopP
	}
	if params.Temperature != nil {
		options["temperature"] = *params.Temperature
	}
	if params.RepeatPenalty != nil {
		options["repeat_penalty"] = *params.RepeatPenalty
	}
	return options
}
