package conformance

import (
	"github.com/Laisky/zap"

	"github.com/teenytinyai/teenytiny-conformance/common/logger"
	"github.com/teenytinyai/teenytiny-conformance/openai"
)

const (
	// echoModel is the deterministic model every scenario exercises.
	echoModel = "echo"

	// systemOnlyMarker must appear in the fallback reply for conversations
	// without a user message.
	systemOnlyMarker = "Echo model"
)

// Suites returns every conformance suite in reporting order.
func Suites() []Suite {
	return []Suite{
		BasicSuite(),
		StreamingSuite(),
		AuthErrorsSuite(),
		OptionsSuite(),
		EndpointsSuite(),
	}
}

// checkEnvelope validates the response fields every non-streaming scenario
// relies on before any content comparison happens.
func checkEnvelope(resp *openai.TextResponse) error {
	if resp.Id == "" {
		return protocolErrf("response has an empty id")
	}
	if resp.Object != openai.ObjectChatCompletion {
		return protocolErrf("response object = %q, want %q", resp.Object, openai.ObjectChatCompletion)
	}
	if resp.Created <= 0 {
		return protocolErrf("response created = %d, want > 0", resp.Created)
	}
	if len(resp.Choices) == 0 {
		return protocolErrf("response has no choices")
	}
	return nil
}

// firstContent returns the first choice's content after envelope checks.
func firstContent(resp *openai.TextResponse) (string, error) {
	if err := checkEnvelope(resp); err != nil {
		return "", err
	}
	return resp.Choices[0].Message.Content, nil
}

// checkEchoedContent asserts the byte-for-byte echo expectation plus the
// model identity.
func checkEchoedContent(resp *openai.TextResponse, want string) error {
	content, err := firstContent(resp)
	if err != nil {
		return err
	}
	if content != want {
		return assertionErrf("echoed content = %q, want %q", content, want)
	}
	if resp.Model != echoModel {
		return assertionErrf("response model = %q, want %q", resp.Model, echoModel)
	}
	return nil
}

// monitorUsage warns when the usage arithmetic is off without failing the
// scenario: the invariant is monitored, not enforced.
func monitorUsage(scenario string, usage openai.Usage) {
	if usage.TotalTokens != usage.PromptTokens+usage.CompletionTokens {
		logger.Logger.Warn("usage total does not equal prompt plus completion",
			zap.String("scenario", scenario),
			zap.Int("prompt_tokens", usage.PromptTokens),
			zap.Int("completion_tokens", usage.CompletionTokens),
			zap.Int("total_tokens", usage.TotalTokens),
		)
	}
}
