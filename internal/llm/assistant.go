package llm

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/param"
)

const defaultPollInterval = time.Second

// AssistantRun is one hosted-assistant exchange: an assistant with the code
// interpreter, a fresh thread holding a single user message, and one run.
type AssistantRun struct {
	Name            string
	Instructions    string
	RunInstructions string
	Question        string
	PollInterval    time.Duration
}

// RunAssistant creates the assistant and thread, posts the question, starts
// a run and polls it until it leaves the queued and in-progress states. It
// returns the text of every thread message, oldest first.
func (c *OpenAIClient) RunAssistant(ctx context.Context, r AssistantRun) ([]string, error) {
	create := openai.BetaAssistantNewParams{
		Model: c.model,
		Tools: []openai.AssistantToolUnionParam{
			{OfCodeInterpreter: &openai.CodeInterpreterToolParam{}},
		},
	}
	if r.Name != "" {
		create.Name = param.NewOpt(r.Name)
	}
	if r.Instructions != "" {
		create.Instructions = param.NewOpt(r.Instructions)
	}
	asst, err := c.client.Beta.Assistants.New(ctx, create)
	if err != nil {
		return nil, &TransportError{Op: "creating assistant", Err: err}
	}

	thread, err := c.client.Beta.Threads.New(ctx, openai.BetaThreadNewParams{})
	if err != nil {
		return nil, &TransportError{Op: "creating thread", Err: err}
	}

	_, err = c.client.Beta.Threads.Messages.New(ctx, thread.ID, openai.BetaThreadMessageNewParams{
		Role:    openai.BetaThreadMessageNewParamsRoleUser,
		Content: openai.BetaThreadMessageNewParamsContentUnion{OfString: param.NewOpt(r.Question)},
	})
	if err != nil {
		return nil, &TransportError{Op: "posting message", Err: err}
	}

	params := openai.BetaThreadRunNewParams{AssistantID: asst.ID}
	if r.RunInstructions != "" {
		params.Instructions = param.NewOpt(r.RunInstructions)
	}
	run, err := c.client.Beta.Threads.Runs.New(ctx, thread.ID, params)
	if err != nil {
		return nil, &TransportError{Op: "starting run", Err: err}
	}

	run, err = c.waitForRun(ctx, thread.ID, run, r.PollInterval)
	if err != nil {
		return nil, err
	}
	if run.Status != openai.RunStatusCompleted {
		err := fmt.Errorf("run %s ended with status %s", run.ID, run.Status)
		if run.LastError.Message != "" {
			err = fmt.Errorf("%w: %s", err, run.LastError.Message)
		}
		return nil, &TransportError{Op: "assistant run", Err: err}
	}

	page, err := c.client.Beta.Threads.Messages.List(ctx, thread.ID, openai.BetaThreadMessageListParams{
		Order: openai.BetaThreadMessageListParamsOrderAsc,
	})
	if err != nil {
		return nil, &TransportError{Op: "listing messages", Err: err}
	}
	return messageTexts(page.Data), nil
}

// waitForRun polls until the run is no longer queued or in progress.
func (c *OpenAIClient) waitForRun(ctx context.Context, threadID string, run *openai.Run, interval time.Duration) (*openai.Run, error) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for run.Status == openai.RunStatusQueued || run.Status == openai.RunStatusInProgress {
		select {
		case <-ctx.Done():
			return nil, &TransportError{Op: "polling run", Err: ctx.Err()}
		case <-ticker.C:
		}

		var err error
		run, err = c.client.Beta.Threads.Runs.Get(ctx, threadID, run.ID)
		if err != nil {
			return nil, &TransportError{Op: "polling run", Err: err}
		}
	}
	return run, nil
}

// messageTexts orders messages by creation time and keeps their text parts.
func messageTexts(msgs []openai.Message) []string {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt < msgs[j].CreatedAt
	})

	var out []string
	for _, m := range msgs {
		for _, part := range m.Content {
			if part.Type == "text" {
				out = append(out, part.Text.Value)
			}
		}
	}
	return out
}
