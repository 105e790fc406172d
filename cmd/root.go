package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "invalsi",
	Short: "Terminal trainer for the INVALSI tests",
	Long: `invalsi prepares Italian students for the INVALSI standardized tests.

Practice in training mode with instant feedback, or sit a timed 90-minute
simulation. Questions come from a curated bank, topped up by an LLM when a
provider is configured.`,
	SilenceUsage: true,
	RunE:         runApp,
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides INVALSI_DB)")
	pf.StringP("lang", "l", "it", "Interface language (it, en)")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-format", "text", "Log format (text, json)")
	pf.String("log-file", "", "Log file for the interactive UI (default <data dir>/invalsi.log)")
	pf.String("bank-dir", "", "Directory with extra question bank files")
	pf.String("llm-provider", "", "LLM provider (gemini, openai, anthropic, openrouter)")
	pf.String("llm-model", "", "Model for the selected LLM provider")
	pf.Duration("llm-timeout", 0, "Timeout for one question generation (0 = provider default)")

	f := rootCmd.Flags()
	f.StringP("file", "f", "", "Open the custom text screen with the contents of this file")
	f.String("speech-command", "auto", `Text-to-speech program for listening items ("auto", "off", or a command line)`)
	f.Duration("exam-duration", 0, "Length of a simulation (0 = 90 minutes)")
	f.Bool("welcome", false, "Show the introduction before the home screen")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(bankCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}
