// internal/providers/openaicompat/provider.go
// Package openaicompat provides a CompletionProvider for OpenAI-style
// /v1/chat/completions endpoints (llama.cpp server, vLLM, OpenAI itself).
package openaicompat

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/arxa-ai/arxa/internal/appconfig"
	"github.com/arxa-ai/arxa/internal/logging"
	"github.com/arxa-ai/arxa/internal/providers"
)

// apiKeyEnv names the environment variable holding the bearer token for
// hosted endpoints. Local servers ignore the header.
const apiKeyEnv = "ARXA_API_KEY"

// Provider implements providers.CompletionProvider using OpenAI-compatible HTTP APIs.
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

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type chatStreamChunk struct {
	Model   string `json:"model"`
	Choices []struct {
		Delta struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
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

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("openaicompat: decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openaicompat: chat response contained no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// Stream issues a streaming chat request and forwards SSE deltas to the callbacks.
func (p *Provider) Stream(ctx context.Context, req providers.Request, callbacks providers.StreamCallbacks) error {
	resp, err := p.send(ctx, req, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	var finalModel string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			break
		}
		if p.debug {
			logging.LogRequest("LLM->ARXA", req.Host.Name, req.Model, data)
		}

		var chunk chatStreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return fmt.Errorf("openaicompat: decode stream chunk: %w", err)
		}
		if chunk.Model != "" {
			finalModel = chunk.Model
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		content := chunk.Choices[0].Delta.Content
		if content == "" || callbacks.OnChunk == nil {
			continue
		}
		role := chunk.Choices[0].Delta.Role
		if role == "" {
			role = "assistant"
		}
		if err := callbacks.OnChunk(providers.ChatMessage{Role: role, Content: content}); err != nil {
			return err
		}
	}

	if callbacks.OnComplete != nil {
		modelName := finalModel
		if modelName == "" {
			modelName = req.Model
		}
		meta := providers.Metadata{Model: modelName, CreatedAt: time.Now(), Done: true}
		if err := callbacks.OnComplete(meta); err != nil {
			return err
		}
	}
	return nil
}

// Close releases provider resources.
func (p *Provider) Close() error { return nil }

func (p *Provider) send(ctx context.Context, req providers.Request, stream bool) (*http.Response, error) {
	messages := providers.WithSystemPrompt(req)
	openAIMessages := make([]map[string]string, len(messages))
	for i, msg := range messages {
		openAIMessages[i] = map[string]string{"role": msg.Role, "content": msg.Content}
	}

	payload := map[string]any{
		"model":    req.Model,
		"messages": openAIMessages,
		"stream":   stream,
	}
	applyParameters(payload, providers.EffectiveParameters(req))
	if req.JSONMode {
		payload["response_format"] = map[string]any{"type": "json_object"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	logging.LogRequest("ARXA->LLM", req.Host.Name, req.Model, body)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.Host.URL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}
	if key := strings.TrimSpace(os.Getenv(apiKeyEnv)); key != "" {
		httpReq.Header.Set("Authorization", "Bearer "+key)
	}

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
		return nil, fmt.Errorf("openaicompat: /v1/chat/completions returned %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

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

func applyParameters(payload map[string]any, params appconfig.Parameters) {
	if params.Temperature != nil {
		payload["temperature"] = *params.Temperature
	}
	if params.TopP != nil {
		payload["top_p"] = *params.TopP
	}
	if params.RepeatPenalty != nil {
		payload["frequency_penalty"] = *params.RepeatPenalty
	}
}
