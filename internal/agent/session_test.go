package agent

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelbrown/querychat/internal/console"
	"github.com/michaelbrown/querychat/internal/llm"
	"github.com/michaelbrown/querychat/internal/llm/llmtest"
)

// scriptedInput returns its lines in order, then io.EOF.
type scriptedInput struct {
	lines []string
}

func (s *scriptedInput) Readline() (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func newSession(a *Agent, out *bytes.Buffer, lines ...string) *Session {
	c := console.New(out)
	AttachConsole(a, c)
	return &Session{
		Agent:     a,
		Input:     &scriptedInput{lines: lines},
		Console:   c,
		Streaming: true,
	}
}

func userMessages(h []llm.Message) []string {
	var out []string
	for _, m := range h {
		if m.Role == llm.RoleUser {
			out = append(out, m.Content)
		}
	}
	return out
}

func TestSessionExitSentinel(t *testing.T) {
	client := &llmtest.Client{Streams: [][]llm.Fragment{llmtest.Text("The tables are artists and albums.")}}
	a := newDBAgent(t, client)

	var out bytes.Buffer
	s := newSession(a, &out, "list all tables", "exit")

	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, []string{"list all tables"}, userMessages(a.History()))
	assert.True(t, strings.HasSuffix(out.String(), Farewell+"\n"), "got %q", out.String())
	assert.Contains(t, out.String(), "The tables are artists and albums.")
	assert.Len(t, client.Requests, 1)
}

func TestSessionExitIsCaseInsensitive(t *testing.T) {
	for _, sentinel := range []string{"EXIT", "Exit", "  exit  "} {
		t.Run(sentinel, func(t *testing.T) {
			client := &llmtest.Client{}
			a := New(client, 5, nil)

			var out bytes.Buffer
			require.NoError(t, newSession(a, &out, sentinel, "never sent").Run(context.Background()))
			assert.Empty(t, client.Requests)
			assert.Equal(t, Farewell+"\n", out.String())
		})
	}
}

func TestSessionEndsOnClosedInput(t *testing.T) {
	a := New(&llmtest.Client{}, 5, nil)

	var out bytes.Buffer
	require.NoError(t, newSession(a, &out).Run(context.Background()))
	assert.Equal(t, Farewell+"\n", out.String())
}

func TestSessionReadError(t *testing.T) {
	a := New(&llmtest.Client{}, 5, nil)
	boom := errors.New("terminal gone")

	s := &Session{Agent: a, Input: failingInput{err: boom}, Console: console.New(io.Discard)}
	assert.ErrorIs(t, s.Run(context.Background()), boom)
}

type failingInput struct{ err error }

func (f failingInput) Readline() (string, error) { return "", f.err }

func TestSessionContinuesAfterTransportError(t *testing.T) {
	client := &llmtest.Client{
		StreamErr: errors.New("503 service unavailable"),
		Streams:   [][]llm.Fragment{llmtest.Text("second try worked")},
	}
	a := New(client, 5, nil)

	var out bytes.Buffer
	require.NoError(t, newSession(a, &out, "first", "second", "exit").Run(context.Background()))

	assert.Contains(t, out.String(), "error: llm call (iteration 1)")
	assert.Contains(t, out.String(), "second try worked")
	assert.Equal(t, []string{"first", "second"}, userMessages(a.History()))
}

func TestSessionCountArtists(t *testing.T) {
	client := &llmtest.Client{Streams: [][]llm.Fragment{
		llmtest.ToolCall("call_42", AskDatabase, `{"query": "SELECT COUNT(*) FROM artists;"}`),
		llmtest.Text("There are ", "5 artists", " in the database."),
	}}
	a := newDBAgent(t, client)

	var out bytes.Buffer
	s := newSession(a, &out, "How many artists are in the database?", "exit")
	db := a.db.(interface{ SetAudit(io.Writer) })
	db.SetAudit(s.Console.QueryWriter())

	require.NoError(t, s.Run(context.Background()))

	var call *llm.ToolCall
	var toolResult *llm.Message
	for i, m := range a.History() {
		if len(m.ToolCalls) == 1 {
			call = &a.History()[i].ToolCalls[0]
		}
		if m.Role == llm.RoleTool {
			toolResult = &a.History()[i]
		}
	}
	require.NotNil(t, call)
	require.NotNil(t, toolResult)

	query, err := ParseQuery(call.Arguments)
	require.NoError(t, err)
	assert.Contains(t, strings.ToUpper(query), "COUNT")
	assert.Contains(t, query, "artists")

	assert.Equal(t, "call_42", toolResult.ToolCallID)
	assert.Contains(t, toolResult.Content, "5")

	printed := out.String()
	assert.Contains(t, printed, "Query: SELECT COUNT(*) FROM artists;")
	assert.Contains(t, printed, "There are 5 artists in the database.")
	assert.True(t, strings.HasSuffix(printed, Farewell+"\n"))
}

func TestSessionNonStreamingReply(t *testing.T) {
	client := &llmtest.Client{Responses: []llm.Response{{Message: llm.AssistantMessage("Hi there!")}}}
	a := New(client, 5, nil)

	var out bytes.Buffer
	s := newSession(a, &out, "hello", "exit")
	s.Streaming = false
	s.ReplyPrefix = "GPT: "

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, "GPT: Hi there!\n"+Farewell+"\n", out.String())
}

func TestSessionCommands(t *testing.T) {
	client := &llmtest.Client{}
	a := New(client, 5, nil)
	a.SetSystemPrompt("sys")

	var out bytes.Buffer
	require.NoError(t, newSession(a, &out, "/help", "/history", "", "exit").Run(context.Background()))

	printed := out.String()
	assert.Contains(t, printed, "Commands:")
	assert.Contains(t, printed, `"role": "system"`)
	assert.Empty(t, client.Requests)
	assert.Len(t, a.History(), 1)
}

func TestSessionSlashQuestionGoesToModel(t *testing.T) {
	client := &llmtest.Client{Streams: [][]llm.Fragment{llmtest.Text("They hold config files.")}}
	a := New(client, 5, nil)

	var out bytes.Buffer
	require.NoError(t, newSession(a, &out, "/etc paths?", "exit").Run(context.Background()))

	require.Len(t, client.Requests, 1)
	assert.Equal(t, llm.UserMessage("/etc paths?"), a.History()[0])
	assert.Contains(t, out.String(), "They hold config files.")
}
