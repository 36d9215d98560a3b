package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"yt2txt/internal"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP server exposing transcription tools",
	Long: `Run a Model Context Protocol (MCP) server that exposes transcription
functionality as tools.

The MCP server provides three tools:
- get_video_metadata: Resolve video metadata without downloading
- get_transcript: Return a cached transcript (free)
- process_video: Download and transcribe a video with Whisper (paid)

Transport options:
- stdio (default): Standard MCP transport via stdin/stdout
- http: HTTP transport on the specified port (use --port to configure)`,
	Example: `  # Run MCP server with stdio transport
  yt2txt mcp

  # Run MCP server with HTTP transport on port 8080
  yt2txt mcp --transport=http --port=8080`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// MCP uses stdio protocol, so disable verbose logging
		config.Verbose = false
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		app := internal.NewApp(config)
		mcpServer := internal.NewMCPServer(app)

		if transport == "http" && !config.Quiet {
			fmt.Printf("Starting MCP server on HTTP port %d...\n", port)
		}

		// Start the server (this will block until context is cancelled)
		return mcpServer.Start(cmd.Context(), transport, port)
	},
}

func init() {
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol (stdio or http)")
	mcpCmd.Flags().Int("port", 8080, "Port for HTTP transport")
	rootCmd.AddCommand(mcpCmd)
}
