package agent

import (
	"context"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/michaelbrown/querychat/internal/console"
)

const (
	// ExitCommand ends the session, compared case-insensitively.
	ExitCommand = "exit"
	Farewell    = "Goodbye!"
)

// LineReader supplies one line of user input per call and blocks until it
// has one. io.EOF means input was closed.
type LineReader interface {
	Readline() (string, error)
}

// Session runs the read-send-print loop for one Agent until the user
// types the exit sentinel or input is closed.
type Session struct {
	Agent   *Agent
	Input   LineReader
	Console *console.Console
	Log     *zap.Logger

	// Streaming selects RunStreaming; otherwise replies are printed whole
	// after ReplyPrefix.
	Streaming   bool
	ReplyPrefix string
}

// AttachConsole routes streamed text, tool calls and tool results of a
// to c.
func AttachConsole(a *Agent, c *console.Console) {
	a.OnTextDelta = c.Text
	a.OnToolCall = c.ToolCall
	a.OnToolResult = func(name, result string) {
		c.ToolResult(result)
	}
}

// Run blocks until the session ends. It returns nil on a normal exit.
func (s *Session) Run(ctx context.Context) error {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}

	for {
		input, err := s.Input.Readline()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.Console.Println(Farewell)
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if strings.EqualFold(input, ExitCommand) {
			s.Console.Println(Farewell)
			return nil
		}
		if input == "" {
			continue
		}

		if s.handleCommand(input) {
			continue
		}

		if s.Streaming {
			_, err = s.Agent.RunStreaming(ctx, input)
		} else {
			var reply string
			reply, err = s.Agent.Run(ctx, input)
			if err == nil {
				s.Console.Reply(s.ReplyPrefix, reply)
			}
		}

		if err != nil {
			log.Error("turn failed", zap.Error(err))
			s.Console.Error(err)
			continue
		}

		if s.Streaming {
			s.Console.Printf("\n\n")
		}
	}
}

// handleCommand runs a session command and reports whether input was one.
// Anything else, slash-prefixed or not, goes to the model.
func (s *Session) handleCommand(input string) bool {
	switch strings.ToLower(input) {
	case "/history":
		s.Console.Println(s.Agent.HistoryJSON())
		s.Console.Println()
	case "/transcript":
		s.Console.Text(Transcript(s.Agent.History()))
	case "/help":
		s.Console.Println("Commands:")
		s.Console.Println("  /help        - Show this help")
		s.Console.Println("  /history     - Show raw conversation history (JSON)")
		s.Console.Println("  /transcript  - Show the conversation as markdown")
		s.Console.Println("  exit         - End the session")
		s.Console.Println()
	default:
		return false
	}
	return true
}
