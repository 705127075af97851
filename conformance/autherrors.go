package conformance

import (
	"context"
	"io"

	"github.com/Laisky/errors/v2"

	"github.com/teenytinyai/teenytiny-conformance/openai"
)

// AuthErrorsSuite covers authentication and validation error semantics.
func AuthErrorsSuite() Suite {
	return Suite{
		Name: "auth-errors",
		Scenarios: []Scenario{
			{Name: "missing API key", Run: scenarioMissingKey},
			{Name: "invalid API key", Run: scenarioInvalidKey},
			{Name: "empty messages rejected", Run: scenarioEmptyMessages},
			{Name: "streaming with invalid API key", Run: scenarioStreamingInvalidKey},
		},
	}
}

// expectKind asserts that err exists and classifies to the wanted kind.
// Unclassified never silently satisfies an expectation.
func expectKind(err error, want openai.ErrorKind, what string) error {
	if err == nil {
		return assertionErrf("%s: expected a %s error, request succeeded", what, want)
	}
	if got := openai.Classify(err); got != want {
		return assertionErrf("%s: classified as %s, want %s: %v", what, got, want, err)
	}
	return nil
}

func scenarioMissingKey(ctx context.Context, target Target) error {
	_, err := target.ClientWithKey("").CreateChatCompletion(ctx, &openai.ChatRequest{
		Model:    echoModel,
		Messages: []openai.Message{openai.UserMessage("Test message")},
	})
	return expectKind(err, openai.KindAuthentication, "missing API key")
}

func scenarioInvalidKey(ctx context.Context, target Target) error {
	_, err := target.ClientWithKey("invalid-key-12345").CreateChatCompletion(ctx, &openai.ChatRequest{
		Model:    echoModel,
		Messages: []openai.Message{openai.UserMessage("Test message")},
	})
	return expectKind(err, openai.KindAuthentication, "invalid API key")
}

func scenarioEmptyMessages(ctx context.Context, target Target) error {
	// Sent with valid credentials so the only thing wrong is the payload.
	_, err := target.Client().CreateChatCompletion(ctx, &openai.ChatRequest{
		Model:    echoModel,
		Messages: []openai.Message{},
	})
	return expectKind(err, openai.KindValidation, "empty messages")
}

// scenarioStreamingInvalidKey exercises deliberate stream abandonment: the
// failure may surface when opening the stream or on the first pull, and the
// unfinished stream must not leak its connection.
func scenarioStreamingInvalidKey(ctx context.Context, target Target) error {
	stream, err := target.ClientWithKey("invalid-streaming-key").CreateChatCompletionStream(ctx, &openai.ChatRequest{
		Model:    echoModel,
		Messages: []openai.Message{openai.UserMessage("Test message")},
		Stream:   true,
	})
	if err != nil {
		return expectKind(err, openai.KindAuthentication, "streaming with invalid API key")
	}
	defer stream.Close()

	_, err = stream.Recv()
	if err == nil || errors.Is(err, io.EOF) {
		return assertionErrf("streaming with invalid API key: expected an authentication error, stream delivered data")
	}
	return expectKind(err, openai.KindAuthentication, "streaming with invalid API key")
}
