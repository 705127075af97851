package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
)

const (
	chatCompletionsPath = "/v1/chat/completions"
	modelsPath          = "/v1/models"
	healthPath          = "/health"

	userAgent = "teenytiny-conformance/1.0"

	maxErrorBodySize = 1 << 20 // 1 MiB
)

// Client talks to one target server with one fixed credential. The
// configuration is immutable: scenarios needing a different credential
// construct their own Client instead of mutating a shared one.
type Client struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	streamClient *http.Client
}

// NewClient builds a client for the target at baseURL. timeout bounds
// blocking requests only; streaming requests run without a client timeout
// so a slow but live stream is not cut off, and rely on the request context
// for cancellation.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: timeout},
		streamClient: &http.Client{},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}

// CreateChatCompletion sends a blocking chat-completions request and returns
// the parsed response. Non-2xx answers come back as *APIError.
func (c *Client) CreateChatCompletion(ctx context.Context, request *ChatRequest) (*TextResponse, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, errors.Wrap(err, "marshal chat request")
	}

	req, err := c.newRequest(ctx, http.MethodPost, chatCompletionsPath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "send chat completion request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError(resp)
	}

	var response TextResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, errors.Wrap(err, "decode chat completion response")
	}
	return &response, nil
}

// CreateChatCompletionStream sends a streaming chat-completions request and
// returns the stream of chunks. The caller owns the stream and must Close it,
// including when abandoning it before the terminal chunk.
func (c *Client) CreateChatCompletionStream(ctx context.Context, request *ChatRequest) (*ChatCompletionStream, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, errors.Wrap(err, "marshal chat request")
	}

	req, err := c.newRequest(ctx, http.MethodPost, chatCompletionsPath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "send chat completion stream request")
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, c.apiError(resp)
	}

	// A JSON content type on a 200 means the target fell back to a
	// non-streaming answer; surface it as an error body rather than
	// feeding it to the SSE scanner.
	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "text/event-stream") {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, errors.Errorf("expected event stream, got %q: %s", contentType, strings.TrimSpace(string(body)))
	}

	return newChatCompletionStream(resp), nil
}

// ListModels fetches the models listing.
func (c *Client) ListModels(ctx context.Context) (*ModelList, error) {
	req, err := c.newRequest(ctx, http.MethodGet, modelsPath, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "send models request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError(resp)
	}

	var list ModelList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, errors.Wrap(err, "decode models response")
	}
	return &list, nil
}

// Health probes the unauthenticated health endpoint.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	req, err := c.newRequest(ctx, http.MethodGet, healthPath, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "send health request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError(resp)
	}

	var status HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, errors.Wrap(err, "decode health response")
	}
	return &status, nil
}

// apiError drains the body into an *APIError, preferring the structured
// OpenAI error envelope when the target sent one.
func (c *Client) apiError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(body)),
	}

	var envelope ErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Message = envelope.Error.Message
		apiErr.Type = envelope.Error.Type
		apiErr.Code = envelope.Error.Code
	}
	return apiErr
}
