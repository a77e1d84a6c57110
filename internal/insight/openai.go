package insight

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// openAIClient is a Completer for any provider exposing the OpenAI chat
// completions API. NVIDIA NIM serves the same request/response shapes on its
// own base URL, so one client covers both.
type openAIClient struct {
	provider   string
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewOpenAIClient returns a Completer that calls the OpenAI API.
//   - apiKey: your OPENAI_API_KEY
//   - model:  e.g. "gpt-4o"
func NewOpenAIClient(apiKey, model string) Completer {
	return newOpenAICompatible("openai", "https://api.openai.com/v1", apiKey, model)
}

// NewNvidiaClient returns a Completer that calls NVIDIA NIM through its
// OpenAI-compatible endpoint.
//   - apiKey: your NVIDIA_API_KEY ("nvapi-...")
//   - model:  e.g. "meta/llama-3.1-70b-instruct"
func NewNvidiaClient(apiKey, model string) Completer {
	return newOpenAICompatible("nvidia", "https://integrate.api.nvidia.com/v1", apiKey, model)
}

func newOpenAICompatible(provider, baseURL, apiKey, model string) Completer {
	return &openAIClient{
		provider: provider,
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		model:    model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // streaming responses can run long
		},
	}
}

// ─── OPENAI-COMPATIBLE API SHAPES ────────────────────────────────────────────

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p,omitempty"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// chatChunk is one server-sent event in a streamed response.
type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// ─── IMPLEMENTATION ───────────────────────────────────────────────────────────

// Complete sends one chat completion request. With Sampling.Stream set, the
// incremental fragments are concatenated in arrival order and returned as a
// single text, so callers never see partial output.
func (c *openAIClient) Complete(ctx context.Context, req Request) (string, error) {
	reqBody := chatRequest{
		Model:       c.model,
		Temperature: req.Sampling.Temperature,
		TopP:        req.Sampling.TopP,
		MaxTokens:   req.Sampling.MaxTokens,
		Stream:      req.Sampling.Stream,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.Prompt},
		},
	}

	resp, err := c.send(ctx, reqBody)
	if err != nil {
		return "", &ServiceError{Provider: c.provider, Err: err}
	}
	defer resp.Body.Close()

	var text string
	if req.Sampling.Stream {
		text, err = readStream(resp.Body)
	} else {
		text, err = readComplete(resp.Body)
	}
	if err != nil {
		return "", &ServiceError{Provider: c.provider, Err: err}
	}
	return text, nil
}

// send issues the HTTP request and verifies the status before the body is
// consumed. Error bodies are read eagerly so the caller gets the provider's
// message rather than a bare status code.
func (c *openAIClient) send(ctx context.Context, reqBody chatRequest) (*http.Response, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions",
		bytes.NewReader(bodyBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		respBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

		var parsed chatResponse
		if json.Unmarshal(respBytes, &parsed) == nil && parsed.Error != nil {
			return nil, fmt.Errorf("API error %s: %s", parsed.Error.Type, parsed.Error.Message)
		}
		return nil, fmt.Errorf("unexpected status %d: %.200s", resp.StatusCode, string(respBytes))
	}

	return resp, nil
}

// readComplete parses a non-streamed response body.
func readComplete(body io.Reader) (string, error) {
	respBytes, err := io.ReadAll(io.LimitReader(body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if parsed.Error != nil {
		return "", fmt.Errorf("API error %s: %s", parsed.Error.Type, parsed.Error.Message)
	}

	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return parsed.Choices[0].Message.Content, nil
}

// readStream consumes a server-sent-event body, concatenating delta fragments
// in arrival order until the [DONE] sentinel.
func readStream(body io.Reader) (string, error) {
	var sb strings.Builder

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}

		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			break
		}

		var chunk chatChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return "", fmt.Errorf("unmarshal stream chunk: %w", err)
		}

		if len(chunk.Choices) > 0 {
			sb.WriteString(chunk.Choices[0].Delta.Content)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read stream: %w", err)
	}

	return sb.String(), nil
}
