package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"yt2txt/internal"
)

var (
	config *internal.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "yt2txt [YouTube URL or ID]",
	Short: "Transcribe YouTube videos with OpenAI Whisper",
	Long: `yt2txt downloads the audio track of a YouTube video, transcribes it
with OpenAI Whisper, and writes a bundle of transcript artifacts
(timestamped text, SRT subtitles, JSON) next to the audio file.

Processed videos are cached on disk, so repeating a video is free.`,
	Example: `  # Transcribe a YouTube video
  yt2txt "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  yt2txt tAP1eZYEuKA

  # Start an interactive session (paste URLs one at a time)
  yt2txt

  # Re-download and re-transcribe even if cached
  yt2txt tAP1eZYEuKA --force`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.HandleVerboseFlag(cmd, config); err != nil {
			return err
		}
		return internal.HandleQuietFlag(cmd, config)
	},
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := internal.NewApp(config)
		force := internal.HandleForceFlag(cmd)

		if len(args) == 0 {
			return runInteractive(cmd.Context(), app, force)
		}

		arg := args[0]
		if internal.IsLikelyCommand(arg) {
			// Check if it's similar to any available commands
			availableCommands := []string{"transcribe", "metadata", "analyze", "chat", "cp", "serve", "mcp", "paths", "version", "help"}
			var suggestions []string
			for _, cmdName := range availableCommands {
				if strings.Contains(cmdName, arg) || (len(arg) <= len(cmdName) && strings.Contains(arg, cmdName[:len(arg)])) {
					suggestions = append(suggestions, cmdName)
				}
			}

			if len(suggestions) > 0 {
				return fmt.Errorf("'%s' doesn't look like a YouTube URL or video ID. Did you mean: %s?", arg, strings.Join(suggestions, ", "))
			}
			return fmt.Errorf("'%s' doesn't look like a YouTube URL or video ID. Use --help to see available commands", arg)
		}

		return processOne(cmd.Context(), app, arg, force)
	},
}

// processOne runs the pipeline for one video and reports the bundle location.
func processOne(ctx context.Context, app *internal.App, arg string, force bool) error {
	bundle, err := app.Process(ctx, arg, force)
	if err != nil {
		return err
	}

	if !config.Quiet {
		fmt.Printf("Transcript bundle: %s\n", bundle.Dir)
		for _, path := range bundle.ArtifactPaths() {
			fmt.Printf("  %s\n", path)
		}
	}
	return nil
}

// runInteractive loops reading video URLs from stdin until the user quits.
// The force flag applies to every video processed in the session.
func runInteractive(ctx context.Context, app *internal.App, force bool) error {
	fmt.Println("Paste a YouTube URL or video ID (empty line to quit).")
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		arg := internal.ReadLine("> ")
		if arg == "" || arg == "q" || arg == "quit" || arg == "exit" {
			return nil
		}

		if err := processOne(ctx, app, arg, force); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}

		if !internal.AskUser("Transcribe another video?") {
			return nil
		}
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Create a cancellable context for the entire application
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize configuration with Viper
	config = internal.InitConfig()

	// Ensure XDG directories exist
	if err := internal.EnsureDirs(config.ConfigDir, config.CacheDir, config.TempDir, config.OutDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating directories: %v\n", err)
		os.Exit(1)
	}

	// Ensure default config exists in XDG config directory
	if err := internal.EnsureDefaultConfig(config.ConfigDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default config: %v\n", err)
	}

	// Ensure default prompt exists in XDG config directory
	if err := internal.EnsureDefaultPrompt(config.ConfigDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default prompt: %v\n", err)
	}

	// Set up signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// Handle shutdown signal in a separate goroutine
	go func() {
		<-sigCh
		fmt.Println("\nReceived interrupt signal. Cleaning up and shutting down...")

		// Cancel the main context to signal all operations to stop
		cancel()

		// Create a context with timeout for cleanup operations
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cleanupCancel()

		// Run cleanup with timeout context
		cleanupDone := make(chan struct{})
		go func() {
			if err := internal.CleanupTempDir(config.TempDir); err != nil {
				fmt.Fprintf(os.Stderr, "Error cleaning up temporary files: %v\n", err)
			}
			close(cleanupDone)
		}()

		// Wait for either cleanup to complete or timeout
		select {
		case <-cleanupDone:
			// Cleanup completed successfully
		case <-cleanupCtx.Done():
			fmt.Fprintln(os.Stderr, "Warning: Cleanup timed out, forcing exit")
		}

		os.Exit(0)
	}()

	// Set context on root command
	rootCmd.SetContext(ctx)

	return rootCmd.Execute()
}

func init() {
	internal.AddProcessingFlags(rootCmd)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for debugging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-essential output")
}
