package internal

import (
	"context"
	"embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/lrstanley/go-ytdlp"
	"github.com/spf13/viper"
)

// CommandRunner executes external commands
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// DefaultCommandRunner implements CommandRunner
type DefaultCommandRunner struct{}

func (r *DefaultCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// Config holds application settings. It is built once by InitConfig and
// passed into constructors; nothing reads the environment after startup.
type Config struct {
	// User configurable settings
	OpenAIAPIKey   string
	OutDir         string
	Model          string
	AnalysisModel  string
	MaxRetries     int
	AnalysisPrompt string
	ServerAddr     string
	Verbose        bool
	Quiet          bool
	MCPLogEnabled  bool

	// Fixed XDG paths (not configurable)
	ConfigDir string
	CacheDir  string
	TempDir   string
}

//go:embed config.toml prompt.txt
var defaultFS embed.FS

// WhisperLimit is the maximum file size accepted by OpenAI's Whisper API (25 MiB)
const WhisperLimit int64 = 25 << 20

// ensureDefaultFile creates a file in the config directory from the embedded
// default if it doesn't exist yet.
func ensureDefaultFile(configDir, embedFilename, description string) error {
	filePath := filepath.Join(configDir, embedFilename)
	if FileExists(filePath) {
		return nil
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	defaultContent, err := defaultFS.ReadFile(embedFilename)
	if err != nil {
		return fmt.Errorf("reading embedded default %s: %w", description, err)
	}

	if err := os.WriteFile(filePath, defaultContent, 0644); err != nil {
		return fmt.Errorf("writing default %s: %w", description, err)
	}

	fmt.Printf("Created default %s at %s\n", description, filePath)
	return nil
}

// EnsureDefaultConfig writes the embedded config.toml into the XDG config
// directory on first run.
func EnsureDefaultConfig(configDir string) error {
	return ensureDefaultFile(configDir, "config.toml", "configuration")
}

// EnsureDefaultPrompt writes the embedded analysis prompt template into the
// XDG config directory on first run.
func EnsureDefaultPrompt(configDir string) error {
	return ensureDefaultFile(configDir, "prompt.txt", "analysis prompt template")
}

// InitConfig loads configuration from .env, environment variables, and an
// optional config.toml, in that order of precedence.
func InitConfig() *Config {
	// Ensure yt-dlp is installed
	ytdlp.MustInstall(context.Background(), nil)

	// .env in the working directory, if present
	_ = godotenv.Load()

	// XDG standard directories
	configDir := filepath.Join(xdg.ConfigHome, "yt2txt")
	cacheDir := filepath.Join(xdg.CacheHome, "yt2txt")
	tempDir := filepath.Join(cacheDir, "chunks")

	v := viper.New()

	v.SetDefault("out_dir", "./out")
	v.SetDefault("model", "whisper-1")
	v.SetDefault("analysis_model", "gpt-4o-mini")
	v.SetDefault("max_retries", 2)
	v.SetDefault("analysis_prompt", "") // if empty will use the default template
	v.SetDefault("server_addr", ":8080")
	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)
	v.SetDefault("mcp_log", false)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	// Environment variables use the same names the original tooling documented
	_ = v.BindEnv("openai_api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("out_dir", "OUT_DIR")
	_ = v.BindEnv("model", "MODEL")
	_ = v.BindEnv("analysis_model", "ANALYSIS_MODEL")
	_ = v.BindEnv("max_retries", "MAX_RETRIES")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: Error reading config file: %v\n", err)
		}
	}

	config := &Config{
		OpenAIAPIKey:   v.GetString("openai_api_key"),
		OutDir:         v.GetString("out_dir"),
		Model:          v.GetString("model"),
		AnalysisModel:  v.GetString("analysis_model"),
		MaxRetries:     v.GetInt("max_retries"),
		AnalysisPrompt: v.GetString("analysis_prompt"),
		ServerAddr:     v.GetString("server_addr"),
		Verbose:        v.GetBool("verbose"),
		Quiet:          v.GetBool("quiet"),
		MCPLogEnabled:  v.GetBool("mcp_log"),

		ConfigDir: configDir,
		CacheDir:  cacheDir,
		TempDir:   tempDir,
	}

	if config.Verbose {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	return config
}

// ValidateAPIKey checks that an OpenAI API key is configured.
func ValidateAPIKey(apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("%w: OPENAI_API_KEY is not set - add it to your environment, .env file, or config.toml", ErrAuth)
	}
	return nil
}
