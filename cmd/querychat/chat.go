package main

import (
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Plain chat without tools or context",
	Long: `Start a plain, non-streaming chat. Replies are capped at max_tokens
(256 by default) and printed whole.

Examples:
  querychat chat
  querychat chat --model gpt-4o`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	e, err := setup(true)
	if err != nil {
		return err
	}
	defer e.close()

	p, err := e.profile("plain")
	if err != nil {
		return err
	}
	model := e.model(p, e.cfg.ChatModel)

	a := e.newAgent(p, model)
	a.SetSampling(e.temperature(p), e.cfg.MaxTokens)

	e.console.Println("Start chatting with GPT! (Type 'exit' to quit)")
	return e.runSession(a, false, "GPT: ")
}
