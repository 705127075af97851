// Package echoserver is a minimal chat-completions target implementing the
// deterministic echo model. The conformance suites use it as an in-process
// reference target in tests; cmd/echoserver serves it standalone.
package echoserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/teenytinyai/teenytiny-conformance/common/helper"
	"github.com/teenytinyai/teenytiny-conformance/common/random"
	"github.com/teenytinyai/teenytiny-conformance/common/render"
	"github.com/teenytinyai/teenytiny-conformance/openai"
)

// Server serves the echo model behind bearer-token authentication.
type Server struct {
	apiKey string
	engine *gin.Engine
}

// New builds a server that accepts exactly the given API key.
func New(apiKey string) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{apiKey: apiKey, engine: engine}

	engine.GET("/health", s.health)
	v1 := engine.Group("/v1", s.authenticate)
	v1.GET("/models", s.listModels)
	v1.POST("/chat/completions", s.chatCompletions)

	return s
}

// Handler exposes the router for httptest and custom http.Server setups.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until the listener fails.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func (s *Server) authenticate(c *gin.Context) {
	key := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if key == "" || key != s.apiKey {
		abortWithError(c, http.StatusUnauthorized, "authentication_error", "invalid_api_key",
			"missing or invalid API key")
		return
	}
	c.Next()
}

func abortWithError(c *gin.Context, statusCode int, errType, code, message string) {
	c.JSON(statusCode, openai.ErrorResponse{Error: openai.Error{
		Message: message,
		Type:    errType,
		Code:    code,
	}})
	c.Abort()
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listModels(c *gin.Context) {
	c.JSON(http.StatusOK, openai.ModelList{
		Object: "list",
		Data: []openai.Model{
			{
				Id:      EchoModelID,
				Object:  "model",
				Created: helper.GetTimestamp(),
				OwnedBy: "teenytiny",
			},
		},
	})
}

func (s *Server) chatCompletions(c *gin.Context) {
	var request openai.ChatRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid_request_error", "malformed_body",
			"malformed request body: "+err.Error())
		return
	}
	if err := openai.ValidateRequest(&request); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid_request_error", "invalid_request",
			"messages must not be empty and model is required")
		return
	}
	if request.Model != EchoModelID {
		abortWithError(c, http.StatusNotFound, "invalid_request_error", "model_not_found",
			"model "+request.Model+" does not exist")
		return
	}

	content := Reply(request.Messages)
	usage := computeUsage(request.Messages, content)
	id := "chatcmpl-" + random.GetRandomString(24)
	created := helper.GetTimestamp()

	if request.Stream {
		s.streamCompletion(c, id, created, request.Model, content, usage)
		return
	}

	c.JSON(http.StatusOK, openai.TextResponse{
		Id:      id,
		Object:  openai.ObjectChatCompletion,
		Created: created,
		Model:   request.Model,
		Choices: []openai.TextResponseChoice{
			{
				Index:        0,
				Message:      openai.AssistantMessage(content),
				FinishReason: openai.FinishReasonStop,
			},
		},
		Usage: usage,
	})
}

// streamCompletion emits one delta per word chunk, then a terminal chunk
// carrying the finish reason and usage, then the [DONE] sentinel.
func (s *Server) streamCompletion(c *gin.Context, id string, created int64, model, content string, usage openai.Usage) {
	render.SetEventStreamHeaders(c)

	for i, piece := range SplitChunks(content) {
		chunk := openai.ChatCompletionsStreamResponse{
			Id:      id,
			Object:  openai.ObjectChatCompletionChunk,
			Created: created,
			Model:   model,
			Choices: []openai.ChatCompletionsStreamResponseChoice{
				{Index: 0, Delta: openai.Delta{Content: piece}},
			},
		}
		if i == 0 {
			chunk.Choices[0].Delta.Role = openai.RoleAssistant
		}
		if err := render.ObjectData(c, chunk); err != nil {
			return
		}
	}

	finishReason := openai.FinishReasonStop
	terminal := openai.ChatCompletionsStreamResponse{
		Id:      id,
		Object:  openai.ObjectChatCompletionChunk,
		Created: created,
		Model:   model,
		Choices: []openai.ChatCompletionsStreamResponseChoice{
			{Index: 0, Delta: openai.Delta{}, FinishReason: &finishReason},
		},
		Usage: &usage,
	}
	if err := render.ObjectData(c, terminal); err != nil {
		return
	}
	render.Done(c)
}
