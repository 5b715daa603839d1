package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/michaelbrown/querychat/internal/llm"
)

const (
	defaultTutorQuestion = "I need to solve the equation `3x + 11 = 14`. Can you help me?"
	tutorRunInstructions = "Please address the user as Jane Doe. The user has a premium account."
)

var tutorCmd = &cobra.Command{
	Use:   "tutor [question]",
	Short: "Ask a hosted math tutor assistant one question",
	Long: `Create a hosted assistant with the code interpreter, post one question to a
new thread and wait for the run to finish. Every message in the thread is
then printed, oldest first.

Examples:
  querychat tutor
  querychat tutor "What is the derivative of x^3?"`,
	RunE: runTutor,
}

func init() {
	rootCmd.AddCommand(tutorCmd)
}

func runTutor(cmd *cobra.Command, args []string) error {
	e, err := setup(true)
	if err != nil {
		return err
	}
	defer e.close()

	p, err := e.profile("tutor")
	if err != nil {
		return err
	}
	model := e.model(p, e.cfg.Tutor.Model)

	question := strings.Join(args, " ")
	if question == "" {
		question = defaultTutorQuestion
	}

	client := llm.NewClient(e.cfg.BaseURL, e.cfg.APIKey, model)
	texts, err := client.RunAssistant(context.Background(), llm.AssistantRun{
		Name:            "Math Tutor",
		Instructions:    p.SystemPrompt,
		RunInstructions: tutorRunInstructions,
		Question:        question,
		PollInterval:    e.cfg.Tutor.PollInterval,
	})
	if err != nil {
		return err
	}

	for _, t := range texts {
		e.console.Println(t)
	}
	return nil
}
