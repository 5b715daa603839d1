package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/michaelbrown/querychat/internal/agent"
	"github.com/michaelbrown/querychat/internal/config"
	"github.com/michaelbrown/querychat/internal/console"
	"github.com/michaelbrown/querychat/internal/llm"
	"github.com/michaelbrown/querychat/internal/logging"
)

// env is what every command starts from.
type env struct {
	cfg     *config.Config
	log     *zap.Logger
	console *console.Console
}

// setup loads config and the logger. Commands that talk to the model pass
// needsModel so a missing credential fails before anything else starts.
func setup(needsModel bool) (*env, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if needsModel {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	logger, err := logging.New(verboseFlag)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger = logger.With(zap.String("session", uuid.NewString()))

	return &env{
		cfg:     cfg,
		log:     logger,
		console: console.New(os.Stdout),
	}, nil
}

func (e *env) close() {
	_ = e.log.Sync()
}

// profile resolves --profile, or def when the flag is empty.
func (e *env) profile(def string) (*agent.Profile, error) {
	name := profileFlag
	if name == "" {
		name = def
	}
	p, err := agent.ResolveProfile(e.cfg.Agent.ProfilesDir, name)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	return p, nil
}

// model picks --model, then the profile's model, then fallback.
func (e *env) model(p *agent.Profile, fallback string) string {
	if modelFlag != "" {
		return modelFlag
	}
	if p != nil && p.Model != "" {
		return p.Model
	}
	return fallback
}

// temperature prefers the profile's setting, zero included, over config.
func (e *env) temperature(p *agent.Profile) float64 {
	if p != nil && p.Temperature != nil {
		return *p.Temperature
	}
	return e.cfg.Temperature
}

func (e *env) newAgent(p *agent.Profile, model string) *agent.Agent {
	client := llm.NewClient(e.cfg.BaseURL, e.cfg.APIKey, model)
	a := agent.New(client, e.cfg.Agent.MaxIterations, e.log)
	a.SetSystemPrompt(p.SystemPrompt)
	agent.AttachConsole(a, e.console)
	e.log.Debug("agent ready",
		zap.String("profile", p.Name),
		zap.String("model", model),
		zap.String("api_key", e.cfg.MaskedAPIKey()))
	return a
}

// promptReader treats Ctrl+C at the prompt like closing input.
type promptReader struct {
	rl *readline.Instance
}

func (p promptReader) Readline() (string, error) {
	line, err := p.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", io.EOF
	}
	return line, err
}

// runSession prompts with "You: " until the exit sentinel.
func (e *env) runSession(a *agent.Agent, streaming bool, replyPrefix string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "You: ",
		HistoryFile:     e.cfg.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	s := &agent.Session{
		Agent:       a,
		Input:       promptReader{rl: rl},
		Console:     e.console,
		Log:         e.log,
		Streaming:   streaming,
		ReplyPrefix: replyPrefix,
	}
	return s.Run(context.Background())
}
