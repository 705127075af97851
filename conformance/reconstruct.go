package conformance

import (
	"io"
	"strings"

	"github.com/Laisky/errors/v2"

	"github.com/teenytinyai/teenytiny-conformance/openai"
)

// ChunkStream produces stream chunks one pull at a time and ends with
// io.EOF. *openai.ChatCompletionStream implements it.
type ChunkStream interface {
	Recv() (*openai.ChatCompletionsStreamResponse, error)
}

// Reconstruction is the single logical completion rebuilt from an ordered
// chunk sequence.
type Reconstruction struct {
	ID           string
	Model        string
	Content      string
	FinishReason string // empty when the stream ended without one
	Chunks       int
}

// ReconstructStream folds a finite chunk stream into one completion,
// accumulating delta content in arrival order with no reordering or
// deduplication. Every chunk is checked for structural validity; a failed
// pull propagates as a transport failure. A missing finish reason is not an
// error here, callers detect it through ExpectComplete.
func ReconstructStream(stream ChunkStream) (*Reconstruction, error) {
	rec := &Reconstruction{}
	var content strings.Builder

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, transportErr(err, "pull stream chunk")
		}

		rec.Chunks++
		if err := rec.absorb(chunk); err != nil {
			return nil, err
		}
		// A chunk without delta content (such as the terminal one)
		// contributes the empty string.
		content.WriteString(chunk.Choices[0].Delta.Content)
	}

	rec.Content = content.String()
	return rec, nil
}

// absorb validates one chunk against the stream invariants and records its
// identity and finish state.
func (r *Reconstruction) absorb(chunk *openai.ChatCompletionsStreamResponse) error {
	if r.FinishReason != "" {
		return protocolErrf("chunk %d arrived after the finish_reason chunk", r.Chunks)
	}
	if chunk.Id == "" {
		return protocolErrf("chunk %d has an empty id", r.Chunks)
	}
	if chunk.Object != openai.ObjectChatCompletionChunk {
		return protocolErrf("chunk %d object = %q, want %q", r.Chunks, chunk.Object, openai.ObjectChatCompletionChunk)
	}
	if chunk.Created <= 0 {
		return protocolErrf("chunk %d created = %d, want > 0", r.Chunks, chunk.Created)
	}
	if len(chunk.Choices) == 0 {
		return protocolErrf("chunk %d has no choices", r.Chunks)
	}
	if chunk.Choices[0].Index != 0 {
		return protocolErrf("chunk %d choice index = %d, want 0", r.Chunks, chunk.Choices[0].Index)
	}

	if r.ID == "" {
		r.ID = chunk.Id
	} else if chunk.Id != r.ID {
		return protocolErrf("chunk %d id %q differs from stream id %q", r.Chunks, chunk.Id, r.ID)
	}
	if r.Model == "" {
		r.Model = chunk.Model
	} else if chunk.Model != r.Model {
		return protocolErrf("chunk %d model %q differs from stream model %q", r.Chunks, chunk.Model, r.Model)
	}

	if reason := chunk.Choices[0].FinishReason; reason != nil && *reason != "" {
		r.FinishReason = *reason
	}
	return nil
}

// ExpectComplete reports a protocol-completeness failure when the stream
// produced no chunks or ended without a finish reason.
func (r *Reconstruction) ExpectComplete() error {
	if r.Chunks == 0 {
		return protocolErrf("stream produced no chunks")
	}
	if r.FinishReason == "" {
		return protocolErrf("stream ended without a finish_reason")
	}
	return nil
}
