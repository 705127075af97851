// Package render writes server-sent events in the chat-completions wire format.
package render

import (
	"encoding/json"

	"github.com/Laisky/errors/v2"
	"github.com/gin-gonic/gin"
)

// SetEventStreamHeaders marks the response as an SSE stream.
func SetEventStreamHeaders(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("Transfer-Encoding", "chunked")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
}

// StringData writes one SSE data line and flushes it so clients receive the
// event immediately rather than at body close.
func StringData(c *gin.Context, str string) {
	_, _ = c.Writer.WriteString("data: " + str + "\n\n")
	c.Writer.Flush()
}

// ObjectData marshals object as JSON and writes it as one SSE event.
func ObjectData(c *gin.Context, object any) error {
	jsonData, err := json.Marshal(object)
	if err != nil {
		return errors.Wrap(err, "marshal stream object")
	}
	StringData(c, string(jsonData))
	return nil
}

// Done terminates the stream with the [DONE] sentinel.
func Done(c *gin.Context) {
	StringData(c, "[DONE]")
}
