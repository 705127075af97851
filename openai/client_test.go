package openai_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teenytinyai/teenytiny-conformance/echoserver"
	"github.com/teenytinyai/teenytiny-conformance/openai"
)

const testAPIKey = "testkey"

func newTestClient(t *testing.T) *openai.Client {
	t.Helper()
	server := httptest.NewServer(echoserver.New(testAPIKey).Handler())
	t.Cleanup(server.Close)
	return openai.NewClient(server.URL, testAPIKey, 10*time.Second)
}

func echoRequest(content string) *openai.ChatRequest {
	return &openai.ChatRequest{
		Model:    echoserver.EchoModelID,
		Messages: []openai.Message{openai.UserMessage(content)},
	}
}

func TestCreateChatCompletion(t *testing.T) {
	client := newTestClient(t)

	resp, err := client.CreateChatCompletion(context.Background(), echoRequest("Hello World"))
	require.NoError(t, err)

	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "Hello World", resp.Choices[0].Message.Content)
	assert.Equal(t, openai.RoleAssistant, resp.Choices[0].Message.Role)
	assert.Equal(t, openai.FinishReasonStop, resp.Choices[0].FinishReason)
	assert.Equal(t, openai.ObjectChatCompletion, resp.Object)
	assert.Equal(t, echoserver.EchoModelID, resp.Model)
	assert.True(t, strings.HasPrefix(resp.Id, "chatcmpl-"), "id %q", resp.Id)
	assert.Greater(t, resp.Created, int64(0))
	assert.Equal(t, resp.Usage.PromptTokens+resp.Usage.CompletionTokens, resp.Usage.TotalTokens)
}

func TestCreateChatCompletionAuthError(t *testing.T) {
	server := httptest.NewServer(echoserver.New(testAPIKey).Handler())
	t.Cleanup(server.Close)

	cases := []struct {
		name   string
		apiKey string
	}{
		{"missing key", ""},
		{"wrong key", "not-the-key"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := openai.NewClient(server.URL, tc.apiKey, 10*time.Second)
			_, err := client.CreateChatCompletion(context.Background(), echoRequest("hi"))
			require.Error(t, err)

			var apiErr *openai.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
			assert.Equal(t, "authentication_error", apiErr.Type)
			assert.Equal(t, openai.KindAuthentication, openai.Classify(err))
		})
	}
}

func TestCreateChatCompletionValidationError(t *testing.T) {
	client := newTestClient(t)

	_, err := client.CreateChatCompletion(context.Background(), &openai.ChatRequest{
		Model:    echoserver.EchoModelID,
		Messages: []openai.Message{},
	})
	require.Error(t, err)

	var apiErr *openai.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, openai.KindValidation, openai.Classify(err))
}

func TestCreateChatCompletionUnknownModel(t *testing.T) {
	client := newTestClient(t)

	_, err := client.CreateChatCompletion(context.Background(), &openai.ChatRequest{
		Model:    "gpt-nonexistent",
		Messages: []openai.Message{openai.UserMessage("hi")},
	})
	require.Error(t, err)

	var apiErr *openai.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestCreateChatCompletionStream(t *testing.T) {
	client := newTestClient(t)

	request := echoRequest("Hello streaming world")
	request.Stream = true
	stream, err := client.CreateChatCompletionStream(context.Background(), request)
	require.NoError(t, err)
	defer stream.Close()

	var content strings.Builder
	var finishReason string
	chunks := 0
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)

		chunks++
		require.Len(t, chunk.Choices, 1)
		assert.Equal(t, openai.ObjectChatCompletionChunk, chunk.Object)
		assert.Equal(t, echoserver.EchoModelID, chunk.Model)
		content.WriteString(chunk.Choices[0].Delta.Content)
		if reason := chunk.Choices[0].FinishReason; reason != nil {
			finishReason = *reason
		}
	}

	assert.Equal(t, "Hello streaming world", content.String())
	assert.Equal(t, openai.FinishReasonStop, finishReason)
	assert.GreaterOrEqual(t, chunks, 2)
}

func TestCreateChatCompletionStreamAuthError(t *testing.T) {
	server := httptest.NewServer(echoserver.New(testAPIKey).Handler())
	t.Cleanup(server.Close)
	client := openai.NewClient(server.URL, "wrong", 10*time.Second)

	request := echoRequest("hi")
	request.Stream = true
	_, err := client.CreateChatCompletionStream(context.Background(), request)
	require.Error(t, err)
	assert.Equal(t, openai.KindAuthentication, openai.Classify(err))
}

func TestStreamCloseBeforeExhaustion(t *testing.T) {
	client := newTestClient(t)

	request := echoRequest("one two three four five")
	request.Stream = true
	stream, err := client.CreateChatCompletionStream(context.Background(), request)
	require.NoError(t, err)

	_, err = stream.Recv()
	require.NoError(t, err)
	require.NoError(t, stream.Close())
}

func TestListModels(t *testing.T) {
	client := newTestClient(t)

	list, err := client.ListModels(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "list", list.Object)
	require.NotEmpty(t, list.Data)
	assert.Equal(t, echoserver.EchoModelID, list.Data[0].Id)
	assert.Equal(t, "model", list.Data[0].Object)
}

func TestHealthNeedsNoCredential(t *testing.T) {
	server := httptest.NewServer(echoserver.New(testAPIKey).Handler())
	t.Cleanup(server.Close)
	client := openai.NewClient(server.URL, "", 10*time.Second)

	status, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", status.Status)
}

func TestClientUnreachableTarget(t *testing.T) {
	client := openai.NewClient("http://127.0.0.1:1", "key", time.Second)

	_, err := client.CreateChatCompletion(context.Background(), echoRequest("hi"))
	require.Error(t, err)

	var apiErr *openai.APIError
	assert.False(t, errors.As(err, &apiErr), "transport failures carry no API error")
	assert.Equal(t, openai.KindUnclassified, openai.Classify(err))
}
