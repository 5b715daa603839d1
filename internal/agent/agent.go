package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/michaelbrown/querychat/internal/database"
	"github.com/michaelbrown/querychat/internal/llm"
)

const defaultMaxIterations = 5

// QueryRunner executes model-written SQL. *database.DB implements it.
type QueryRunner interface {
	Execute(ctx context.Context, query string) (*database.Result, error)
}

// Agent owns the conversation history and drives turns against the model.
// It is not safe for concurrent use; one turn runs at a time.
type Agent struct {
	llm          llm.Client
	db           QueryRunner
	history      []llm.Message
	tools        []llm.ToolDef
	maxIter      int
	temperature  *float64
	maxTokens    int64
	log          *zap.Logger
	OnToolCall   func(name string, arguments string)
	OnToolResult func(name string, result string)
	OnTextDelta  func(delta string)
}

// New creates an Agent with an empty history. maxIterations bounds the
// number of model calls a single user message may trigger.
func New(client llm.Client, maxIterations int, logger *zap.Logger) *Agent {
	if maxIterations <= 0 {
		maxIterations = defaultMaxIterations
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{
		llm:     client,
		maxIter: maxIterations,
		log:     logger,
	}
}

// SetSystemPrompt seeds or replaces the leading system message.
func (a *Agent) SetSystemPrompt(prompt string) {
	if prompt == "" {
		return
	}
	if len(a.history) > 0 && a.history[0].Role == llm.RoleSystem {
		a.history[0] = llm.SystemMessage(prompt)
		return
	}
	a.history = append([]llm.Message{llm.SystemMessage(prompt)}, a.history...)
}

// SetDatabase enables the ask_database tool. The schema is rendered once
// here and sent unchanged with every request.
func (a *Agent) SetDatabase(db QueryRunner, schema database.Schema) {
	a.db = db
	a.tools = []llm.ToolDef{AskDatabaseTool(schema.String())}
}

// SetSampling sets temperature and the completion token cap. A zero
// temperature is sent as is; a zero maxTokens leaves the provider default.
func (a *Agent) SetSampling(temperature float64, maxTokens int64) {
	a.temperature = &temperature
	a.maxTokens = maxTokens
}

// Tools returns the tool definitions sent with every request.
func (a *Agent) Tools() []llm.ToolDef {
	return a.tools
}

func (a *Agent) request() llm.Request {
	return llm.Request{
		Messages:    a.history,
		Tools:       a.tools,
		Temperature: a.temperature,
		MaxTokens:   a.maxTokens,
	}
}

// Run sends a user message without streaming and returns the final text.
func (a *Agent) Run(ctx context.Context, userMessage string) (string, error) {
	return a.run(ctx, userMessage, func(ctx context.Context) (llm.Turn, error) {
		resp, err := a.llm.ChatCompletion(ctx, a.request())
		if err != nil {
			return llm.Turn{}, err
		}
		calls := resp.Message.ToolCalls
		if len(calls) == 0 {
			return llm.Turn{Text: resp.Message.Content}, nil
		}
		if len(calls) > 1 {
			a.log.Warn("model requested several tool calls; only the first is executed",
				zap.Int("count", len(calls)))
		}
		return llm.Turn{ToolCall: &calls[0]}, nil
	})
}

// RunStreaming is like Run but echoes text token-by-token via OnTextDelta.
func (a *Agent) RunStreaming(ctx context.Context, userMessage string) (string, error) {
	return a.run(ctx, userMessage, func(ctx context.Context) (llm.Turn, error) {
		stream, err := a.llm.ChatCompletionStream(ctx, a.request())
		if err != nil {
			return llm.Turn{}, err
		}
		acc := llm.NewAccumulator(a.OnTextDelta)
		turn, err := llm.Collect(stream, acc)
		if err != nil {
			return llm.Turn{}, err
		}
		if acc.MultipleCalls() {
			a.log.Warn("model streamed several tool calls; they were merged into one")
		}
		return turn, nil
	})
}

// run appends the user message and alternates model calls with tool
// execution until the model answers in text. Every tool result is fed
// back so the model can describe it in natural language.
func (a *Agent) run(ctx context.Context, userMessage string, complete func(context.Context) (llm.Turn, error)) (string, error) {
	a.history = append(a.history, llm.UserMessage(userMessage))

	for i := 0; i < a.maxIter; i++ {
		turn, err := complete(ctx)
		if err != nil {
			return "", fmt.Errorf("llm call (iteration %d): %w", i+1, err)
		}

		if turn.ToolCall == nil {
			a.history = append(a.history, llm.AssistantMessage(turn.Text))
			return turn.Text, nil
		}

		tc := *turn.ToolCall
		a.history = append(a.history, llm.ToolCallMessage(tc))

		if a.OnToolCall != nil {
			a.OnToolCall(tc.Name, tc.Arguments)
		}

		result := a.executeTool(ctx, tc)

		if a.OnToolResult != nil {
			a.OnToolResult(tc.Name, result)
		}

		a.history = append(a.history, llm.ToolResultMessage(tc.ID, result))
	}

	return "", fmt.Errorf("agent reached max iterations (%d) without a final response", a.maxIter)
}

// executeTool always returns text for the tool message; failures are
// reported to the model, never to the caller.
func (a *Agent) executeTool(ctx context.Context, tc llm.ToolCall) string {
	if tc.Name != AskDatabase || a.db == nil {
		a.log.Warn("unknown tool requested", zap.String("tool", tc.Name))
		return fmt.Sprintf("error: unknown tool %q", tc.Name)
	}

	query, err := ParseQuery(tc.Arguments)
	if err != nil {
		a.log.Warn("malformed tool call", zap.String("id", tc.ID), zap.Error(err))
		return fmt.Sprintf("error: %s", err)
	}

	res, err := a.db.Execute(ctx, query)
	if err != nil {
		a.log.Warn("query failed", zap.String("query", query), zap.Error(err))
	}
	return database.FormatResult(res, err)
}

// History returns the current conversation history.
func (a *Agent) History() []llm.Message {
	return a.history
}

// HistoryJSON returns the conversation as formatted JSON (for debugging).
func (a *Agent) HistoryJSON() string {
	data, _ := json.MarshalIndent(a.history, "", "  ")
	return string(data)
}

// String returns a summary of the agent state.
func (a *Agent) String() string {
	return fmt.Sprintf("Agent(tools=%d, history=%d messages, maxIter=%d)",
		len(a.tools), len(a.history), a.maxIter)
}
