// Package llmtest provides scripted llm.Client doubles for tests.
package llmtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/michaelbrown/querychat/internal/llm"
)

// SliceStream replays a fixed list of fragments, then ends with Err.
type SliceStream struct {
	fragments []llm.Fragment
	pos       int
	err       error
	closed    bool
}

// NewStream returns a stream over the given fragments.
func NewStream(fragments ...llm.Fragment) *SliceStream {
	return &SliceStream{fragments: fragments, pos: -1}
}

// WithErr makes the stream report err after the last fragment.
func (s *SliceStream) WithErr(err error) *SliceStream {
	s.err = err
	return s
}

func (s *SliceStream) Next() bool {
	if s.pos+1 >= len(s.fragments) {
		return false
	}
	s.pos++
	return true
}

func (s *SliceStream) Current() llm.Fragment { return s.fragments[s.pos] }
func (s *SliceStream) Err() error            { return s.err }

func (s *SliceStream) Close() error {
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *SliceStream) Closed() bool { return s.closed }

// Text splits text into one content fragment per chunk.
func Text(chunks ...string) []llm.Fragment {
	out := make([]llm.Fragment, len(chunks))
	for i, c := range chunks {
		out[i] = llm.Fragment{Content: c}
	}
	return out
}

// ToolCall streams a single call the way the API does: the id and name on
// the first fragment, then the arguments in the given pieces.
func ToolCall(id, name string, argChunks ...string) []llm.Fragment {
	out := []llm.Fragment{{ToolCalls: []llm.ToolCallDelta{{ID: id, Name: name}}}}
	for _, c := range argChunks {
		out = append(out, llm.Fragment{ToolCalls: []llm.ToolCallDelta{{Arguments: c}}})
	}
	return out
}

// Client is an llm.Client that answers from scripts, in order. Each stream
// script is consumed by one ChatCompletionStream call, each response by
// one ChatCompletion call.
type Client struct {
	mu        sync.Mutex
	Streams   [][]llm.Fragment
	Responses []llm.Response
	// StreamErr, when set, is returned by the next ChatCompletionStream call instead of a script.
	StreamErr error
	Requests  []llm.Request
}

func (c *Client) ChatCompletion(ctx context.Context, req llm.Request) (*llm.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Requests = append(c.Requests, snapshot(req))
	if len(c.Responses) == 0 {
		return nil, &llm.TransportError{Op: "chat completion", Err: fmt.Errorf("no more mock responses")}
	}
	resp := c.Responses[0]
	c.Responses = c.Responses[1:]
	return &resp, nil
}

func (c *Client) ChatCompletionStream(ctx context.Context, req llm.Request) (llm.FragmentStream, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Requests = append(c.Requests, snapshot(req))
	if c.StreamErr != nil {
		err := c.StreamErr
		c.StreamErr = nil
		return nil, &llm.TransportError{Op: "chat completion stream", Err: err}
	}
	if len(c.Streams) == 0 {
		return nil, &llm.TransportError{Op: "chat completion stream", Err: fmt.Errorf("no more mock streams")}
	}
	frags := c.Streams[0]
	c.Streams = c.Streams[1:]
	return NewStream(frags...), nil
}

// snapshot copies the message slice so later appends by the caller do not
// change what was recorded.
func snapshot(req llm.Request) llm.Request {
	req.Messages = append([]llm.Message(nil), req.Messages...)
	return req
}
