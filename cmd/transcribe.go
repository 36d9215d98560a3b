package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"yt2txt/internal"
)

// transcribeCmd represents the transcribe command
var transcribeCmd = &cobra.Command{
	Use:   "transcribe [YouTube URL or ID]",
	Short: "Print the transcript of a YouTube video (cached or freshly transcribed)",
	Example: `  # Print timestamped transcript to stdout
  yt2txt transcribe "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  yt2txt transcribe tAP1eZYEuKA

  # Save plain transcript text to a file
  yt2txt transcribe tAP1eZYEuKA -o transcript.txt

  # Emit SRT subtitles instead of timestamped text
  yt2txt transcribe tAP1eZYEuKA --srt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := internal.NewApp(config)

		transcript, err := app.Transcript(cmd.Context(), args[0], internal.HandleForceFlag(cmd))
		if err != nil {
			return err
		}

		var rendered string
		if srt, _ := cmd.Flags().GetBool("srt"); srt {
			rendered = internal.RenderSRT(transcript)
		} else {
			rendered = internal.RenderText(transcript)
		}

		// Handle output flag
		outputFile, _ := cmd.Flags().GetString("output")
		if outputFile != "" {
			return os.WriteFile(outputFile, []byte(rendered), 0644)
		}

		fmt.Print(rendered)
		return nil
	},
}

func init() {
	internal.AddProcessingFlags(transcribeCmd)
	transcribeCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	transcribeCmd.Flags().Bool("srt", false, "Render SRT subtitles instead of timestamped text")
	rootCmd.AddCommand(transcribeCmd)
}
