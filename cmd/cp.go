package cmd

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"yt2txt/internal"
)

// cpCmd copies the transcript to the system clipboard instead of printing to stdout.
var cpCmd = &cobra.Command{
	Use:   "cp [YouTube URL or ID]",
	Short: "Copy a video transcript to the clipboard",
	Example: `  # Copy timestamped transcript to the clipboard
  yt2txt cp "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  yt2txt cp tAP1eZYEuKA

  # Copy plain text without timestamps
  yt2txt cp tAP1eZYEuKA --plain`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := internal.NewApp(config)

		transcript, err := app.Transcript(cmd.Context(), args[0], internal.HandleForceFlag(cmd))
		if err != nil {
			return err
		}

		text := internal.RenderText(transcript)
		if plain, _ := cmd.Flags().GetBool("plain"); plain {
			text = transcript.Text()
		}

		if err := clipboard.WriteAll(text); err != nil {
			return fmt.Errorf("copying transcript to clipboard: %w", err)
		}

		if !config.Quiet {
			fmt.Println("Transcript copied to clipboard")
		}

		return nil
	},
}

func init() {
	internal.AddProcessingFlags(cpCmd)
	cpCmd.Flags().Bool("plain", false, "Copy plain text without timestamps")
	rootCmd.AddCommand(cpCmd)
}
