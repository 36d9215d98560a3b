package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"yt2txt/internal"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [YouTube URL or ID]",
	Short: "Generate an AI analysis of a video transcript",
	Example: `  # Analyze a video (transcribes first if not cached)
  yt2txt analyze "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  yt2txt analyze tAP1eZYEuKA

  # Use specific OpenAI model
  yt2txt analyze tAP1eZYEuKA --model gpt-4o

  # Use custom prompt
  yt2txt analyze tAP1eZYEuKA --prompt "tldr: {{.Transcript}}"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.ValidateAPIKey(config.OpenAIAPIKey); err != nil {
			return err
		}
		internal.HandleModelFlag(cmd, config)

		app := internal.NewApp(config)

		if err := internal.HandlePromptFlag(cmd, app); err != nil {
			return err
		}

		bundle, err := app.Process(cmd.Context(), args[0], internal.HandleForceFlag(cmd))
		if err != nil {
			return err
		}

		analysis, err := app.Analyze(cmd.Context(), bundle, internal.HandleForceFlag(cmd))
		if err != nil {
			return err
		}

		rendered, err := internal.RenderMarkdown(analysis)
		if err != nil {
			// Fall back to the raw text if rendering fails.
			rendered = analysis
		}
		fmt.Print(rendered)
		return nil
	},
}

func init() {
	internal.AddProcessingFlags(analyzeCmd)
	internal.AddOpenAIFlags(analyzeCmd)
	rootCmd.AddCommand(analyzeCmd)
}
