package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"yt2txt/internal"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web UI for transcribing and browsing videos",
	Long: `Serve starts a local web server with a small UI for submitting videos,
browsing cached transcripts, and chatting about them.

Transcript artifacts are served under /files/ straight from the output
directory.`,
	Example: `  # Start the web UI on the default address
  yt2txt serve

  # Listen on a different address
  yt2txt serve --addr :9090`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = config.ServerAddr
		}

		app := internal.NewApp(config)
		server := internal.NewServer(app)

		if !config.Quiet {
			fmt.Printf("Serving on http://localhost%s\n", addr)
		}
		return server.ListenAndServe(cmd.Context(), addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config, :8080)")
	rootCmd.AddCommand(serveCmd)
}
