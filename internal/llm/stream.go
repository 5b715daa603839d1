package llm

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/ssestream"
)

// StreamHandler receives text deltas during streaming.
type StreamHandler func(delta string)

// ToolCallDelta is one partial tool-call update. Any field may be empty.
type ToolCallDelta struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}

// Fragment is one incremental piece of a streamed response. It carries
// either tool-call deltas or a content delta, never both.
type Fragment struct {
	Content   string
	ToolCalls []ToolCallDelta
}

// IsToolCall reports whether the fragment belongs to the tool-call channel.
func (f Fragment) IsToolCall() bool {
	return len(f.ToolCalls) > 0
}

// FragmentStream is a finite, ordered sequence of fragments. Next blocks
// until the next fragment arrives or the stream ends.
type FragmentStream interface {
	Next() bool
	Current() Fragment
	Err() error
	Close() error
}

// ChatCompletionStream opens a streaming chat completion request. The
// returned stream must be closed by the caller.
func (c *OpenAIClient) ChatCompletionStream(ctx context.Context, req Request) (FragmentStream, error) {
	stream := c.client.Chat.Completions.NewStreaming(ctx, c.params(req))
	if err := stream.Err(); err != nil {
		stream.Close()
		return nil, &TransportError{Op: "chat completion stream", Err: err}
	}
	return &chunkStream{stream: stream}, nil
}

// chunkStream adapts an openai SSE stream to FragmentStream using the
// first choice of every chunk.
type chunkStream struct {
	stream  *ssestream.Stream[openai.ChatCompletionChunk]
	current Fragment
}

func (s *chunkStream) Next() bool {
	if !s.stream.Next() {
		return false
	}
	s.current = fragmentFromChunk(s.stream.Current())
	return true
}

func (s *chunkStream) Current() Fragment {
	return s.current
}

func (s *chunkStream) Err() error {
	return s.stream.Err()
}

func (s *chunkStream) Close() error {
	return s.stream.Close()
}

func fragmentFromChunk(chunk openai.ChatCompletionChunk) Fragment {
	if len(chunk.Choices) == 0 {
		return Fragment{}
	}
	delta := chunk.Choices[0].Delta
	if len(delta.ToolCalls) == 0 {
		return Fragment{Content: delta.Content}
	}
	f := Fragment{ToolCalls: make([]ToolCallDelta, 0, len(delta.ToolCalls))}
	for _, tc := range delta.ToolCalls {
		f.ToolCalls = append(f.ToolCalls, ToolCallDelta{
			Index:     int(tc.Index),
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return f
}
