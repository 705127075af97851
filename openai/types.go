// Package openai holds the chat-completions wire model and a transport
// client for talking to an OpenAI-compatible target server.
package openai

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Response object discriminators.
const (
	ObjectChatCompletion      = "chat.completion"
	ObjectChatCompletionChunk = "chat.completion.chunk"
)

// Finish reasons.
const (
	FinishReasonStop          = "stop"
	FinishReasonLength        = "length"
	FinishReasonContentFilter = "content_filter"
)

// Message is a single chat message. Ordering within a conversation is
// significant: the echo model replies with the last user message.
type Message struct {
	Role    string `json:"role" validate:"required"`
	Content string `json:"content"`
}

func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// ChatRequest is the chat-completions request body. The optional sampling
// fields are advisory: the echo model accepts them but must not let them
// alter the echoed content.
type ChatRequest struct {
	Model            string    `json:"model" validate:"required"`
	Messages         []Message `json:"messages" validate:"required,min=1"`
	Stream           bool      `json:"stream,omitempty"`
	Temperature      *float64  `json:"temperature,omitempty"`
	TopP             *float64  `json:"top_p,omitempty"`
	MaxTokens        int       `json:"max_tokens,omitempty"`
	FrequencyPenalty *float64  `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64  `json:"presence_penalty,omitempty"`
	Seed             *int      `json:"seed,omitempty"`
	User             string    `json:"user,omitempty"`
}

// Usage is the token usage information returned by the target.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type TextResponseChoice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// TextResponse is the blocking chat-completions response.
type TextResponse struct {
	Id      string               `json:"id"`
	Object  string               `json:"object"`
	Created int64                `json:"created"`
	Model   string               `json:"model"`
	Choices []TextResponseChoice `json:"choices"`
	Usage   Usage                `json:"usage"`
}

// Delta carries the incremental content of one stream chunk. The role is
// only present on the first chunk of a stream.
type Delta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

type ChatCompletionsStreamResponseChoice struct {
	Index        int     `json:"index"`
	Delta        Delta   `json:"delta"`
	FinishReason *string `json:"finish_reason"`
}

// ChatCompletionsStreamResponse is one SSE data object of a streamed
// completion. Across one call the id, object and model stay constant and
// exactly one chunk, the terminal one, carries a finish reason.
type ChatCompletionsStreamResponse struct {
	Id      string                                `json:"id"`
	Object  string                                `json:"object"`
	Created int64                                 `json:"created"`
	Model   string                                `json:"model"`
	Choices []ChatCompletionsStreamResponseChoice `json:"choices"`
	Usage   *Usage                                `json:"usage,omitempty"`
}

// Error is the OpenAI error envelope body.
type Error struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param,omitempty"`
	Code    any    `json:"code,omitempty"`
}

// ErrorResponse wraps Error the way the wire protocol nests it.
type ErrorResponse struct {
	Error Error `json:"error"`
}

// Model describes one entry of the models listing.
type Model struct {
	Id      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

// ModelList is the /v1/models response.
type ModelList struct {
	Object string  `json:"object"`
	Data   []Model `json:"data"`
}

// HealthStatus is the /health response.
type HealthStatus struct {
	Status string `json:"status"`
}
