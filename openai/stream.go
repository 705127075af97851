package openai

import (
	"bufio"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/Laisky/errors/v2"
)

const (
	dataPrefix = "data:"
	doneMarker = "[DONE]"
)

// ChatCompletionStream is a finite, non-restartable producer of stream
// chunks. Each Recv pulls exactly one chunk off the wire.
type ChatCompletionStream struct {
	resp    *http.Response
	scanner *bufio.Scanner
	done    bool
}

func newChatCompletionStream(resp *http.Response) *ChatCompletionStream {
	scanner := bufio.NewScanner(resp.Body)
	buffer := make([]byte, 1024*1024) // 1MB buffer
	scanner.Buffer(buffer, len(buffer))
	scanner.Split(bufio.ScanLines)
	return &ChatCompletionStream{resp: resp, scanner: scanner}
}

// Recv returns the next chunk, or io.EOF once the stream signalled [DONE]
// or the body ended. Transport failures mid-stream surface as errors from
// the underlying reader.
func (s *ChatCompletionStream) Recv() (*ChatCompletionsStreamResponse, error) {
	if s.done {
		return nil, io.EOF
	}

	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))
		if data == "" {
			continue
		}
		if data == doneMarker {
			s.done = true
			return nil, io.EOF
		}

		var chunk ChatCompletionsStreamResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return nil, errors.Wrapf(err, "decode stream chunk %q", data)
		}
		return &chunk, nil
	}

	if err := s.scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read stream")
	}

	s.done = true
	return nil, io.EOF
}

// Close releases the underlying connection. It is safe to call on an
// exhausted stream and required on an abandoned one.
func (s *ChatCompletionStream) Close() error {
	return s.resp.Body.Close()
}
