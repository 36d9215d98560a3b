package internal

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AddProcessingFlags adds flags shared by commands that run the pipeline
func AddProcessingFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("force", "f", false, "Re-download and re-transcribe even if cached (costs money)")
}

// AddOpenAIFlags adds flags related to OpenAI API functionality
func AddOpenAIFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("model", "m", "", "OpenAI model for analysis and chat")
	cmd.Flags().StringP("prompt", "p", "", "Custom analysis prompt (string or file path)")
}

// HandleForceFlag reads the --force flag
func HandleForceFlag(cmd *cobra.Command) bool {
	force, _ := cmd.Flags().GetBool("force")
	return force
}

// HandlePromptFlag processes the --prompt flag to set a custom analysis prompt
func HandlePromptFlag(cmd *cobra.Command, app *App) error {
	promptFlag := cmd.Flags().Lookup("prompt")
	if promptFlag == nil || !promptFlag.Changed {
		return nil
	}

	prompt, err := cmd.Flags().GetString("prompt")
	if err != nil {
		return fmt.Errorf("failed to get prompt flag: %w", err)
	}
	if prompt == "" {
		return nil
	}

	app.SetPromptManager(NewPromptManager(app.config.ConfigDir, prompt))

	if IsLikelyFilePath(prompt) && FileExists(prompt) {
		app.ui.Verbose("Using custom prompt file: %s\n", prompt)
	} else {
		app.ui.Verbose("Using custom prompt string\n")
	}

	return nil
}

// HandleVerboseFlag processes the --verbose flag to update config
func HandleVerboseFlag(cmd *cobra.Command, config *Config) error {
	flag := cmd.Flags().Lookup("verbose")
	if flag == nil || !flag.Changed {
		return nil
	}
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}
	config.Verbose = verbose
	return nil
}

// HandleQuietFlag processes the --quiet flag to update config
func HandleQuietFlag(cmd *cobra.Command, config *Config) error {
	flag := cmd.Flags().Lookup("quiet")
	if flag == nil || !flag.Changed {
		return nil
	}
	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	config.Quiet = quiet
	return nil
}

// HandleModelFlag overrides the analysis model from the --model flag
func HandleModelFlag(cmd *cobra.Command, config *Config) {
	modelFlag, _ := cmd.Flags().GetString("model")
	if modelFlag != "" {
		config.AnalysisModel = modelFlag
	}
}

// IsLikelyCommand reports whether an argument looks like a mistyped
// subcommand rather than a video URL or ID.
func IsLikelyCommand(arg string) bool {
	if arg == "" {
		return false
	}
	if videoIDPattern.MatchString(arg) {
		return false
	}
	for _, c := range arg {
		if !('a' <= c && c <= 'z') {
			return false
		}
	}
	return true
}
