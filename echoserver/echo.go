package echoserver

import (
	"strings"
	"unicode"

	"github.com/teenytinyai/teenytiny-conformance/openai"
)

const (
	// EchoModelID is the only model the reference target serves.
	EchoModelID = "echo"

	// DefaultReply is returned for conversations that carry no user message,
	// so a system-only prompt never yields empty content.
	DefaultReply = "Echo model ready. Send a user message and I will echo it back."
)

// Reply implements the echo model: the content of the last user message
// wins regardless of surrounding system or assistant messages.
func Reply(messages []openai.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == openai.RoleUser {
			return messages[i].Content
		}
	}
	return DefaultReply
}

// SplitChunks slices content into word-sized stream deltas. Whitespace stays
// attached to the preceding word so concatenating the deltas in order
// reproduces the content byte for byte.
func SplitChunks(content string) []string {
	if content == "" {
		return nil
	}

	var chunks []string
	var current strings.Builder
	inSpace := false
	for _, r := range content {
		isSpace := unicode.IsSpace(r)
		if !isSpace && inSpace && current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		current.WriteRune(r)
		inSpace = isSpace
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// CountTokenText estimates token count at roughly four characters per
// token, with a floor of one token for non-empty text.
func CountTokenText(text string) int {
	if text == "" {
		return 0
	}
	tokens := len(text) / 4
	if tokens == 0 {
		tokens = 1
	}
	return tokens
}

// computeUsage charges one token of per-message overhead on top of the
// content estimate so prompt tokens never come out zero.
func computeUsage(messages []openai.Message, completion string) openai.Usage {
	promptTokens := 0
	for _, message := range messages {
		promptTokens += CountTokenText(message.Content) + 1
	}
	completionTokens := CountTokenText(completion)
	return openai.Usage{
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
	}
}
