package conformance

import (
	"context"

	"github.com/teenytinyai/teenytiny-conformance/openai"
)

// OptionsSuite verifies that sampling parameters are accepted and ignored:
// no combination of them may change the echoed content or the model field.
func OptionsSuite() Suite {
	return Suite{
		Name: "options",
		Scenarios: []Scenario{
			{Name: "temperature parameter", Run: scenarioTemperature},
			{Name: "max_tokens parameter", Run: scenarioMaxTokens},
			{Name: "combined parameters", Run: scenarioCombinedParameters},
			{Name: "streaming with parameters", Run: scenarioStreamingWithParameters},
			{Name: "user parameter", Run: scenarioUserParameter},
			{Name: "seed reproducibility", Run: scenarioSeedReproducibility},
			{Name: "frequency and presence penalties", Run: scenarioPenaltyParameters},
		},
	}
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func scenarioTemperature(ctx context.Context, target Target) error {
	resp, err := target.Client().CreateChatCompletion(ctx, &openai.ChatRequest{
		Model:       echoModel,
		Temperature: floatPtr(0.7),
		Messages:    []openai.Message{openai.UserMessage("Temperature test")},
	})
	if err != nil {
		return callFailed(err, "temperature completion")
	}
	return checkEchoedContent(resp, "Temperature test")
}

func scenarioMaxTokens(ctx context.Context, target Target) error {
	resp, err := target.Client().CreateChatCompletion(ctx, &openai.ChatRequest{
		Model:     echoModel,
		MaxTokens: 50,
		Messages:  []openai.Message{openai.UserMessage("Max tokens test")},
	})
	if err != nil {
		return callFailed(err, "max_tokens completion")
	}
	if err := checkEchoedContent(resp, "Max tokens test"); err != nil {
		return err
	}
	if resp.Usage.TotalTokens > 100 {
		return assertionErrf("usage total_tokens = %d, want <= 100 for a short echo", resp.Usage.TotalTokens)
	}
	return nil
}

func scenarioCombinedParameters(ctx context.Context, target Target) error {
	resp, err := target.Client().CreateChatCompletion(ctx, &openai.ChatRequest{
		Model:       echoModel,
		Temperature: floatPtr(0.5),
		TopP:        floatPtr(0.9),
		MaxTokens:   100,
		Messages:    []openai.Message{openai.UserMessage("Combined parameters")},
	})
	if err != nil {
		return callFailed(err, "combined parameters completion")
	}
	if err := checkEchoedContent(resp, "Combined parameters"); err != nil {
		return err
	}
	if resp.Usage.TotalTokens <= 0 {
		return assertionErrf("usage total_tokens = %d, want > 0", resp.Usage.TotalTokens)
	}
	return nil
}

func scenarioStreamingWithParameters(ctx context.Context, target Target) error {
	stream, err := target.Client().CreateChatCompletionStream(ctx, &openai.ChatRequest{
		Model:       echoModel,
		Temperature: floatPtr(0.8),
		MaxTokens:   75,
		Messages:    []openai.Message{openai.UserMessage("Streaming with options")},
		Stream:      true,
	})
	if err != nil {
		return callFailed(err, "open parameterized stream")
	}
	defer stream.Close()

	rec, err := ReconstructStream(stream)
	if err != nil {
		return err
	}
	if err := rec.ExpectComplete(); err != nil {
		return err
	}
	return checkReconstruction(rec, "Streaming with options")
}

func scenarioUserParameter(ctx context.Context, target Target) error {
	resp, err := target.Client().CreateChatCompletion(ctx, &openai.ChatRequest{
		Model:    echoModel,
		User:     "test-user-123",
		Messages: []openai.Message{openai.UserMessage("User parameter test")},
	})
	if err != nil {
		return callFailed(err, "user parameter completion")
	}
	return checkEchoedContent(resp, "User parameter test")
}

// scenarioSeedReproducibility sends the same seeded request twice; a
// deterministic model must answer identically both times.
func scenarioSeedReproducibility(ctx context.Context, target Target) error {
	const message = "Seed test message"
	request := func() *openai.ChatRequest {
		return &openai.ChatRequest{
			Model:    echoModel,
			Seed:     intPtr(12345),
			Messages: []openai.Message{openai.UserMessage(message)},
		}
	}

	first, err := target.Client().CreateChatCompletion(ctx, request())
	if err != nil {
		return callFailed(err, "first seeded completion")
	}
	second, err := target.Client().CreateChatCompletion(ctx, request())
	if err != nil {
		return callFailed(err, "second seeded completion")
	}

	contentA, err := firstContent(first)
	if err != nil {
		return err
	}
	contentB, err := firstContent(second)
	if err != nil {
		return err
	}
	if contentA != contentB {
		return assertionErrf("seeded responses differ: %q vs %q", contentA, contentB)
	}
	if contentA != message {
		return assertionErrf("seeded content = %q, want %q", contentA, message)
	}
	return nil
}

func scenarioPenaltyParameters(ctx context.Context, target Target) error {
	resp, err := target.Client().CreateChatCompletion(ctx, &openai.ChatRequest{
		Model:            echoModel,
		FrequencyPenalty: floatPtr(0.5),
		PresencePenalty:  floatPtr(0.3),
		Messages:         []openai.Message{openai.UserMessage("Penalty parameters test")},
	})
	if err != nil {
		return callFailed(err, "penalty parameters completion")
	}
	return checkEchoedContent(resp, "Penalty parameters test")
}
