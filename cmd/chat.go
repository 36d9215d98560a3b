package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"yt2txt/internal"
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat [YouTube URL or ID]",
	Short: "Chat with an AI about a video transcript",
	Long: `Chat starts an interactive question-and-answer session grounded in the
transcript of a video. The video is transcribed first if it is not cached.

Type your question and press enter. An empty line ends the session.`,
	Example: `  # Ask questions about a video
  yt2txt chat "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  yt2txt chat tAP1eZYEuKA

  # Use a specific OpenAI model for answers
  yt2txt chat tAP1eZYEuKA --model gpt-4o`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.ValidateAPIKey(config.OpenAIAPIKey); err != nil {
			return err
		}
		internal.HandleModelFlag(cmd, config)

		app := internal.NewApp(config)

		transcript, err := app.Transcript(cmd.Context(), args[0], internal.HandleForceFlag(cmd))
		if err != nil {
			return err
		}

		session := app.NewChat(transcript)
		fmt.Printf("Chatting about %q. Empty line to quit.\n", transcript.Title)

		for {
			if cmd.Context().Err() != nil {
				return cmd.Context().Err()
			}

			question := internal.ReadLine("you> ")
			if question == "" {
				return nil
			}

			answer, err := session.Ask(cmd.Context(), question)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}

			rendered, err := internal.RenderMarkdown(answer)
			if err != nil {
				rendered = answer
			}
			fmt.Print(rendered)
			fmt.Println()
		}
	},
}

func init() {
	internal.AddProcessingFlags(chatCmd)
	internal.AddOpenAIFlags(chatCmd)
	rootCmd.AddCommand(chatCmd)
}
