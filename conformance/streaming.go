package conformance

import (
	"context"

	"github.com/teenytinyai/teenytiny-conformance/openai"
)

// StreamingSuite covers incremental delivery and reconstruction of streamed
// completions.
func StreamingSuite() Suite {
	return Suite{
		Name: "streaming",
		Scenarios: []Scenario{
			{Name: "streaming round-trip", Run: scenarioStreamingRoundTrip},
			{Name: "streaming matches non-streaming", Run: scenarioStreamingMatchesBlocking},
			{Name: "streaming multiline content", Run: scenarioStreamingMultiline},
			{Name: "streaming unicode content", Run: scenarioStreamingUnicode},
			{Name: "streaming chunk structure", Run: scenarioStreamingStructure},
		},
	}
}

// reconstructEcho issues a streaming request for content and folds the
// chunk sequence into a completed Reconstruction.
func reconstructEcho(ctx context.Context, target Target, content string) (*Reconstruction, error) {
	stream, err := target.Client().CreateChatCompletionStream(ctx, &openai.ChatRequest{
		Model:    echoModel,
		Messages: []openai.Message{openai.UserMessage(content)},
		Stream:   true,
	})
	if err != nil {
		return nil, callFailed(err, "open completion stream")
	}
	defer stream.Close()

	rec, err := ReconstructStream(stream)
	if err != nil {
		return nil, err
	}
	if err := rec.ExpectComplete(); err != nil {
		return nil, err
	}
	return rec, nil
}

func checkReconstruction(rec *Reconstruction, want string) error {
	if rec.Content != want {
		return assertionErrf("reconstructed content = %q, want %q", rec.Content, want)
	}
	if rec.FinishReason != openai.FinishReasonStop {
		return assertionErrf("finish_reason = %q, want %q", rec.FinishReason, openai.FinishReasonStop)
	}
	if rec.Model != echoModel {
		return assertionErrf("stream model = %q, want %q", rec.Model, echoModel)
	}
	return nil
}

func scenarioStreamingRoundTrip(ctx context.Context, target Target) error {
	rec, err := reconstructEcho(ctx, target, "Hello Stream")
	if err != nil {
		return err
	}
	return checkReconstruction(rec, "Hello Stream")
}

// scenarioStreamingMatchesBlocking verifies that the concatenated deltas
// reproduce exactly what a non-streaming call with the same request returns.
func scenarioStreamingMatchesBlocking(ctx context.Context, target Target) error {
	const message = "Reconstruct me"

	rec, err := reconstructEcho(ctx, target, message)
	if err != nil {
		return err
	}

	resp, err := target.Client().CreateChatCompletion(ctx, &openai.ChatRequest{
		Model:    echoModel,
		Messages: []openai.Message{openai.UserMessage(message)},
	})
	if err != nil {
		return callFailed(err, "blocking completion for comparison")
	}
	blocking, err := firstContent(resp)
	if err != nil {
		return err
	}

	if rec.Content != blocking {
		return assertionErrf("streamed content %q differs from blocking content %q", rec.Content, blocking)
	}
	return nil
}

func scenarioStreamingMultiline(ctx context.Context, target Target) error {
	const message = "Line 1\nLine 2\nLine 3"
	rec, err := reconstructEcho(ctx, target, message)
	if err != nil {
		return err
	}
	return checkReconstruction(rec, message)
}

func scenarioStreamingUnicode(ctx context.Context, target Target) error {
	const message = "Hello! 🌟 Special: @#$%"
	rec, err := reconstructEcho(ctx, target, message)
	if err != nil {
		return err
	}
	return checkReconstruction(rec, message)
}

// scenarioStreamingStructure walks the raw chunk sequence itself: the fold
// already enforces per-chunk structure, so this scenario asserts the parts
// the fold leaves to callers, the chunk count and the first delta's role.
func scenarioStreamingStructure(ctx context.Context, target Target) error {
	stream, err := target.Client().CreateChatCompletionStream(ctx, &openai.ChatRequest{
		Model:    echoModel,
		Messages: []openai.Message{openai.UserMessage("Structure validation")},
		Stream:   true,
	})
	if err != nil {
		return callFailed(err, "open completion stream")
	}
	defer stream.Close()

	first, err := stream.Recv()
	if err != nil {
		return transportErr(err, "pull first stream chunk")
	}
	if len(first.Choices) == 0 {
		return protocolErrf("first chunk has no choices")
	}
	if first.Choices[0].Delta.Role != openai.RoleAssistant {
		return assertionErrf("first delta role = %q, want %q", first.Choices[0].Delta.Role, openai.RoleAssistant)
	}

	rec := &Reconstruction{Chunks: 1}
	if err := rec.absorb(first); err != nil {
		return err
	}
	remainder, err := ReconstructStream(stream)
	if err != nil {
		return err
	}
	if remainder.Model != "" && remainder.Model != rec.Model {
		return protocolErrf("model changed mid-stream from %q to %q", rec.Model, remainder.Model)
	}
	if remainder.FinishReason == "" {
		return protocolErrf("stream ended without a finish_reason")
	}
	if rec.Chunks+remainder.Chunks < 2 {
		return assertionErrf("expected at least two chunks, got %d", rec.Chunks+remainder.Chunks)
	}
	return nil
}
