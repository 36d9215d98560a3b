package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"yt2txt/internal"
)

// metadataCmd represents the metadata command
var metadataCmd = &cobra.Command{
	Use:   "metadata [YouTube URL or ID]",
	Short: "Resolve metadata for a YouTube video without downloading",
	Example: `  # Get metadata from YouTube video
  yt2txt metadata "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  yt2txt metadata tAP1eZYEuKA

  # Save metadata to file
  yt2txt metadata tAP1eZYEuKA -o metadata.json

  # Format output as pretty JSON
  yt2txt metadata tAP1eZYEuKA --pretty`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := internal.NewApp(config)

		record, err := app.Metadata(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		// Convert metadata to JSON
		var jsonData []byte
		pretty, _ := cmd.Flags().GetBool("pretty")
		if pretty {
			jsonData, err = json.MarshalIndent(record, "", "  ")
		} else {
			jsonData, err = json.Marshal(record)
		}
		if err != nil {
			return fmt.Errorf("error converting metadata to JSON: %w", err)
		}

		// Handle output flag
		outputFile, _ := cmd.Flags().GetString("output")
		if outputFile != "" {
			return os.WriteFile(outputFile, jsonData, 0644)
		}

		fmt.Println(string(jsonData))

		return nil
	},
}

func init() {
	metadataCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	metadataCmd.Flags().Bool("pretty", false, "Format output as pretty JSON")
	rootCmd.AddCommand(metadataCmd)
}
