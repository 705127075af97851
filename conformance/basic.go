package conformance

import (
	"context"
	"strings"

	"github.com/teenytinyai/teenytiny-conformance/openai"
)

// BasicSuite covers non-streaming echo correctness.
func BasicSuite() Suite {
	return Suite{
		Name: "basic",
		Scenarios: []Scenario{
			{Name: "echo identity", Run: scenarioEchoIdentity},
			{Name: "multi-message conversation", Run: scenarioMultiMessage},
			{Name: "system prompt with user message", Run: scenarioSystemWithUser},
			{Name: "system-only default reply", Run: scenarioSystemOnly},
			{Name: "response structure", Run: scenarioResponseStructure},
			{Name: "empty user content", Run: scenarioEmptyContent},
			{Name: "unicode and special characters", Run: scenarioUnicode},
			{Name: "multiline content", Run: scenarioMultiline},
		},
	}
}

func scenarioEchoIdentity(ctx context.Context, target Target) error {
	resp, err := target.Client().CreateChatCompletion(ctx, &openai.ChatRequest{
		Model:    echoModel,
		Messages: []openai.Message{openai.UserMessage("Hello World")},
	})
	if err != nil {
		return callFailed(err, "basic completion")
	}
	return checkEchoedContent(resp, "Hello World")
}

func scenarioMultiMessage(ctx context.Context, target Target) error {
	resp, err := target.Client().CreateChatCompletion(ctx, &openai.ChatRequest{
		Model: echoModel,
		Messages: []openai.Message{
			openai.SystemMessage("You are a helpful assistant."),
			openai.UserMessage("First message"),
			openai.AssistantMessage("First response"),
			openai.UserMessage("Last message"),
		},
	})
	if err != nil {
		return callFailed(err, "multi-message completion")
	}
	// The last user message wins.
	return checkEchoedContent(resp, "Last message")
}

func scenarioSystemWithUser(ctx context.Context, target Target) error {
	resp, err := target.Client().CreateChatCompletion(ctx, &openai.ChatRequest{
		Model: echoModel,
		Messages: []openai.Message{
			openai.SystemMessage("You are a helpful assistant."),
			openai.UserMessage("Test message"),
		},
	})
	if err != nil {
		return callFailed(err, "system plus user completion")
	}
	return checkEchoedContent(resp, "Test message")
}

func scenarioSystemOnly(ctx context.Context, target Target) error {
	resp, err := target.Client().CreateChatCompletion(ctx, &openai.ChatRequest{
		Model: echoModel,
		Messages: []openai.Message{
			openai.SystemMessage("You are a helpful assistant."),
		},
	})
	if err != nil {
		return callFailed(err, "system-only completion")
	}
	content, err := firstContent(resp)
	if err != nil {
		return err
	}
	if !strings.Contains(content, systemOnlyMarker) {
		return assertionErrf("system-only reply %q does not contain %q", content, systemOnlyMarker)
	}
	return nil
}

func scenarioResponseStructure(ctx context.Context, target Target) error {
	resp, err := target.Client().CreateChatCompletion(ctx, &openai.ChatRequest{
		Model:    echoModel,
		Messages: []openai.Message{openai.UserMessage("Structure test")},
	})
	if err != nil {
		return callFailed(err, "structure completion")
	}
	if err := checkEchoedContent(resp, "Structure test"); err != nil {
		return err
	}

	choice := resp.Choices[0]
	if choice.Index != 0 {
		return protocolErrf("choice index = %d, want 0", choice.Index)
	}
	if choice.FinishReason != openai.FinishReasonStop {
		return assertionErrf("finish_reason = %q, want %q", choice.FinishReason, openai.FinishReasonStop)
	}
	if choice.Message.Role != openai.RoleAssistant {
		return assertionErrf("message role = %q, want %q", choice.Message.Role, openai.RoleAssistant)
	}

	if resp.Usage.PromptTokens < 0 || resp.Usage.CompletionTokens < 0 {
		return protocolErrf("negative token counts in usage: %+v", resp.Usage)
	}
	if resp.Usage.TotalTokens <= 0 {
		return assertionErrf("usage total_tokens = %d, want > 0", resp.Usage.TotalTokens)
	}
	monitorUsage("response structure", resp.Usage)
	return nil
}

func scenarioEmptyContent(ctx context.Context, target Target) error {
	resp, err := target.Client().CreateChatCompletion(ctx, &openai.ChatRequest{
		Model:    echoModel,
		Messages: []openai.Message{openai.UserMessage("")},
	})
	if err != nil {
		return callFailed(err, "empty content completion")
	}
	// Empty input is valid; the target must still answer with a well-formed
	// response, echoing the empty string.
	return checkEchoedContent(resp, "")
}

func scenarioUnicode(ctx context.Context, target Target) error {
	const message = "Hello! 🌟 Special chars: @#$%^&*()_+-={}[]|\\:;\"'<>?,./ 中文"
	resp, err := target.Client().CreateChatCompletion(ctx, &openai.ChatRequest{
		Model:    echoModel,
		Messages: []openai.Message{openai.UserMessage(message)},
	})
	if err != nil {
		return callFailed(err, "unicode completion")
	}
	return checkEchoedContent(resp, message)
}

func scenarioMultiline(ctx context.Context, target Target) error {
	const message = "Line 1\nLine 2\nLine 3 with more content\nFinal line"
	resp, err := target.Client().CreateChatCompletion(ctx, &openai.ChatRequest{
		Model:    echoModel,
		Messages: []openai.Message{openai.UserMessage(message)},
	})
	if err != nil {
		return callFailed(err, "multiline completion")
	}
	return checkEchoedContent(resp, message)
}
