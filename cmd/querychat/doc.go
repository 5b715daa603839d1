package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/michaelbrown/querychat/internal/document"
)

var pdfPathFlag string

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Chat about the contents of a PDF document",
	Long: `Start a streaming chat whose system prompt carries the text of a PDF.

The document is read once at startup. The default persona is "sidekick",
a Swedish-speaking customer service assistant; pick another with --profile.

Examples:
  querychat doc --pdf utbmat.pdf
  querychat doc --pdf handbook.pdf --profile plain`,
	RunE: runDoc,
}

func init() {
	docCmd.Flags().StringVar(&pdfPathFlag, "pdf", "", "PDF file to load (default from config: utbmat.pdf)")
	rootCmd.AddCommand(docCmd)
}

func runDoc(cmd *cobra.Command, args []string) error {
	e, err := setup(true)
	if err != nil {
		return err
	}
	defer e.close()

	path := pdfPathFlag
	if path == "" {
		path = e.cfg.Document.Path
	}
	doc, err := document.Load(context.Background(), path)
	if err != nil {
		return err
	}

	p, err := e.profile("sidekick")
	if err != nil {
		return err
	}
	model := e.model(p, e.cfg.Model)

	a := e.newAgent(p, model)
	a.SetSystemPrompt(document.SystemPrompt(p.SystemPrompt, doc))
	a.SetSampling(e.temperature(p), 0)

	e.console.Printf("Loaded %s\n", doc.Summary())
	e.console.Println("Start chatting with GPT! (Type 'exit' to quit)")

	return e.runSession(a, true, "")
}
