package llm

import (
	"fmt"
	"strings"
)

// AccumulatorState is the phase of an Accumulator.
type AccumulatorState int

const (
	StateIdle AccumulatorState = iota
	StateText
	StateToolCall
	StateDone
)

func (s AccumulatorState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateText:
		return "accumulating(text)"
	case StateToolCall:
		return "accumulating(tool)"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Turn is the outcome of one streamed response: either plain assistant
// text or a single completed tool call.
type Turn struct {
	Text     string
	ToolCall *ToolCall
}

// Accumulator assembles streamed fragments into a Turn.
//
// Only one tool call is tracked per turn. Deltas for further call indexes
// are merged into the same id/name/argument buffers; MultipleCalls reports
// when that happened.
type Accumulator struct {
	state     AccumulatorState
	echo      StreamHandler
	id        string
	name      strings.Builder
	arguments strings.Builder
	text      strings.Builder
	index     int
	merged    bool
}

// NewAccumulator returns an idle accumulator. Content deltas are passed to
// echo as they arrive; echo may be nil.
func NewAccumulator(echo StreamHandler) *Accumulator {
	return &Accumulator{echo: echo, index: -1}
}

// State returns the current phase.
func (a *Accumulator) State() AccumulatorState {
	return a.state
}

// MultipleCalls reports whether deltas for more than one call index were seen.
func (a *Accumulator) MultipleCalls() bool {
	return a.merged
}

// Add consumes one fragment. Adding after Finish is a no-op.
func (a *Accumulator) Add(f Fragment) {
	if a.state == StateDone {
		return
	}

	if f.IsToolCall() {
		a.state = StateToolCall
		for _, d := range f.ToolCalls {
			if a.index == -1 {
				a.index = d.Index
			} else if d.Index != a.index {
				a.merged = true
			}
			if d.ID != "" {
				a.id = d.ID
			}
			a.name.WriteString(d.Name)
			a.arguments.WriteString(d.Arguments)
		}
		return
	}

	if a.state == StateIdle {
		a.state = StateText
	}
	if f.Content == "" {
		return
	}
	a.text.WriteString(f.Content)
	if a.echo != nil {
		a.echo(f.Content)
	}
}

// Finish ends accumulation and returns exactly one outcome: a tool call if
// any function name was streamed, otherwise the accumulated text.
func (a *Accumulator) Finish() Turn {
	a.state = StateDone
	if a.name.Len() > 0 {
		return Turn{ToolCall: &ToolCall{
			ID:        a.id,
			Name:      a.name.String(),
			Arguments: a.arguments.String(),
		}}
	}
	return Turn{Text: a.text.String()}
}

// Collect drives acc over stream until it ends and closes the stream.
func Collect(stream FragmentStream, acc *Accumulator) (Turn, error) {
	defer stream.Close()

	for stream.Next() {
		acc.Add(stream.Current())
	}
	if err := stream.Err(); err != nil {
		return Turn{}, &TransportError{Op: "streaming", Err: err}
	}
	return acc.Finish(), nil
}
