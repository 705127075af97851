package echoserver

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teenytinyai/teenytiny-conformance/openai"
)

func TestReply(t *testing.T) {
	cases := []struct {
		name     string
		messages []openai.Message
		want     string
	}{
		{
			"single user message",
			[]openai.Message{openai.UserMessage("Hello")},
			"Hello",
		},
		{
			"last user message wins",
			[]openai.Message{
				openai.UserMessage("First"),
				openai.AssistantMessage("First"),
				openai.UserMessage("Second"),
			},
			"Second",
		},
		{
			"system message ignored",
			[]openai.Message{
				openai.SystemMessage("You are helpful"),
				openai.UserMessage("Echo this"),
			},
			"Echo this",
		},
		{
			"system only falls back",
			[]openai.Message{openai.SystemMessage("You are helpful")},
			DefaultReply,
		},
		{
			"empty user content echoes empty",
			[]openai.Message{openai.UserMessage("")},
			"",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Reply(tc.messages))
		})
	}
}

func TestSplitChunksLossless(t *testing.T) {
	cases := []string{
		"Hello World",
		"one",
		"  leading and trailing  ",
		"Line one\nLine two\nLine three",
		"tabs\tand\nnewlines",
		"Hello! 🌟 中文 works",
		"",
	}

	for _, content := range cases {
		chunks := SplitChunks(content)
		assert.Equalf(t, content, strings.Join(chunks, ""),
			"chunks of %q must concatenate back losslessly", content)
		for _, chunk := range chunks {
			assert.NotEmpty(t, chunk)
		}
	}
}

func TestSplitChunksWordBoundaries(t *testing.T) {
	assert.Equal(t, []string{"Hello ", "World"}, SplitChunks("Hello World"))
	assert.Equal(t, []string{"a \n", "b"}, SplitChunks("a \nb"))
	assert.Nil(t, SplitChunks(""))
}

func TestCountTokenText(t *testing.T) {
	assert.Equal(t, 0, CountTokenText(""))
	assert.Equal(t, 1, CountTokenText("abc"))
	assert.Equal(t, 1, CountTokenText("abcd"))
	assert.Equal(t, 3, CountTokenText("twelve chars"))
}

func TestComputeUsage(t *testing.T) {
	messages := []openai.Message{openai.UserMessage("Hello World")}
	usage := computeUsage(messages, "Hello World")

	assert.Greater(t, usage.PromptTokens, 0)
	assert.Greater(t, usage.CompletionTokens, 0)
	assert.Equal(t, usage.PromptTokens+usage.CompletionTokens, usage.TotalTokens)
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(New("testkey").Handler())
	t.Cleanup(server.Close)
	return server
}

func postCompletion(t *testing.T, server *httptest.Server, apiKey string, request openai.ChatRequest) *http.Response {
	t.Helper()
	payload, err := json.Marshal(request)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, server.URL+"/v1/chat/completions", bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	server := newServer(t)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestModelsRequiresAuth(t *testing.T) {
	server := newServer(t)

	resp, err := http.Get(server.URL + "/v1/models")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestChatCompletionsAuthFailure(t *testing.T) {
	server := newServer(t)

	for _, key := range []string{"", "wrong-key"} {
		resp := postCompletion(t, server, key, openai.ChatRequest{
			Model:    EchoModelID,
			Messages: []openai.Message{openai.UserMessage("hi")},
		})
		defer resp.Body.Close()

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		var envelope openai.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
		assert.Equal(t, "authentication_error", envelope.Error.Type)
		assert.Equal(t, "invalid_api_key", envelope.Error.Code)
	}
}

func TestChatCompletionsEmptyMessages(t *testing.T) {
	server := newServer(t)

	resp := postCompletion(t, server, "testkey", openai.ChatRequest{
		Model:    EchoModelID,
		Messages: []openai.Message{},
	})
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var envelope openai.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "invalid_request_error", envelope.Error.Type)
}

func TestChatCompletionsUnknownModel(t *testing.T) {
	server := newServer(t)

	resp := postCompletion(t, server, "testkey", openai.ChatRequest{
		Model:    "gpt-unknown",
		Messages: []openai.Message{openai.UserMessage("hi")},
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestChatCompletionsEcho(t *testing.T) {
	server := newServer(t)

	resp := postCompletion(t, server, "testkey", openai.ChatRequest{
		Model:    EchoModelID,
		Messages: []openai.Message{openai.UserMessage("Hello World")},
	})
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body openai.TextResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	require.Len(t, body.Choices, 1)
	assert.Equal(t, "Hello World", body.Choices[0].Message.Content)
	assert.Equal(t, openai.RoleAssistant, body.Choices[0].Message.Role)
	assert.Equal(t, openai.FinishReasonStop, body.Choices[0].FinishReason)
	assert.Equal(t, openai.ObjectChatCompletion, body.Object)
	assert.True(t, strings.HasPrefix(body.Id, "chatcmpl-"))
	assert.Equal(t, body.Usage.PromptTokens+body.Usage.CompletionTokens, body.Usage.TotalTokens)
}

func TestChatCompletionsStreamWireFormat(t *testing.T) {
	server := newServer(t)

	resp := postCompletion(t, server, "testkey", openai.ChatRequest{
		Model:    EchoModelID,
		Messages: []openai.Message{openai.UserMessage("Hello streaming world")},
		Stream:   true,
	})
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	var content strings.Builder
	var sawDone bool
	var finishReason string
	var lastChunk openai.ChatCompletionsStreamResponse
	chunks := 0

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			sawDone = true
			break
		}

		var chunk openai.ChatCompletionsStreamResponse
		require.NoError(t, json.Unmarshal([]byte(data), &chunk))
		require.Len(t, chunk.Choices, 1)
		assert.Equal(t, openai.ObjectChatCompletionChunk, chunk.Object)

		if chunks == 0 {
			assert.Equal(t, openai.RoleAssistant, chunk.Choices[0].Delta.Role)
		}
		content.WriteString(chunk.Choices[0].Delta.Content)
		if reason := chunk.Choices[0].FinishReason; reason != nil {
			finishReason = *reason
		}
		lastChunk = chunk
		chunks++
	}
	require.NoError(t, scanner.Err())

	assert.True(t, sawDone, "stream must end with the [DONE] sentinel")
	assert.Equal(t, "Hello streaming world", content.String())
	assert.Equal(t, openai.FinishReasonStop, finishReason)
	assert.GreaterOrEqual(t, chunks, 2)
	require.NotNil(t, lastChunk.Usage, "terminal chunk carries usage")
	assert.Equal(t, lastChunk.Usage.PromptTokens+lastChunk.Usage.CompletionTokens, lastChunk.Usage.TotalTokens)
}
