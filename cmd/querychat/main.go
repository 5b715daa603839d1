package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFlag  string
	modelFlag   string
	profileFlag string
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "querychat",
	Short: "querychat - terminal chat with a language model and your data",
	Long: `querychat is a small terminal chat client for an OpenAI-compatible API.

It can answer questions about a local SQLite database by letting the model
write SQL, or answer from the text of a local PDF document.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default: ./querychat.yaml or ~/.querychat/querychat.yaml)")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "Model to use (overrides config and profile)")
	rootCmd.PersistentFlags().StringVar(&profileFlag, "profile", "", "Persona profile (builtin: sql, sidekick, tutor, plain)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Debug logging to stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
