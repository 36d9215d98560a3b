package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"yt2txt/internal"
)

// slidesCmd represents the slides command
var slidesCmd = &cobra.Command{
	Use:   "slides [YouTube URL or ID]",
	Short: "Extract slide images from a YouTube video using scene detection",
	Long: `slides downloads the full video and detects slide transitions with
ffmpeg scene detection. Each slide is saved as a PNG under frames/ in the
bundle directory, together with a JSON manifest and an HTML viewer you can
open in a browser.`,
	Example: `  # Extract slides from a presentation video
  yt2txt slides "https://www.youtube.com/watch?v=tAP1eZYEuKA"

  # Re-download the video and re-extract even if cached
  yt2txt slides tAP1eZYEuKA --force`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := internal.NewApp(config)

		slides, err := app.Slides(cmd.Context(), args[0], internal.HandleForceFlag(cmd))
		if err != nil {
			return err
		}

		if len(slides) == 0 {
			fmt.Println("No slides found in video")
			return nil
		}

		if !config.Quiet {
			fmt.Printf("Extracted %d slides\n", len(slides))
			for _, slide := range slides {
				fmt.Printf("  [%s] %s\n", slide.TimeFormatted, slide.ImagePath)
			}
			videoID, err := internal.ExtractVideoID(internal.NormalizeURL(args[0]))
			if err == nil {
				if entry, err := app.Cache().Lookup(videoID); err == nil && entry != nil {
					fmt.Printf("Viewer: %s\n", filepath.Join(entry.Dir, internal.SlidesViewerFile))
				}
			}
		}
		return nil
	},
}

func init() {
	internal.AddProcessingFlags(slidesCmd)
	rootCmd.AddCommand(slidesCmd)
}
