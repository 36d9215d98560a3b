package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// App holds the application state and dependencies
type App struct {
	fetcher     VideoFetcher
	transcriber Transcriber
	chat        ChatClient
	writer      *Writer
	cache       *Cache
	slides      *SlideExtractor
	prompts     *PromptManager
	config      *Config
	ui          UIManager
}

// NewApp initializes the application
func NewApp(config *Config, options ...AppOption) *App {
	cmdRunner := &DefaultCommandRunner{}
	audio := NewAudio(cmdRunner, config.TempDir, config.Verbose)
	ui := NewUIManager(config.Verbose, config.Quiet)

	app := &App{
		fetcher:     NewYouTube(config.Verbose),
		transcriber: NewWhisper(config.OpenAIAPIKey, audio, config.Model, WhisperLimit, ui),
		chat:        NewOpenAIChat(config.OpenAIAPIKey),
		writer:      NewWriter(config.Verbose),
		cache:       NewCache(config.OutDir),
		slides:      NewSlideExtractor(cmdRunner, config.Verbose),
		prompts:     NewPromptManager(config.ConfigDir, config.AnalysisPrompt),
		config:      config,
		ui:          ui,
	}

	for _, option := range options {
		option(app)
	}

	return app
}

// AppOption customizes App creation
type AppOption func(*App)

// WithFetcher sets a custom video fetcher
func WithFetcher(fetcher VideoFetcher) AppOption {
	return func(a *App) {
		a.fetcher = fetcher
	}
}

// WithTranscriber sets a custom transcription client
func WithTranscriber(transcriber Transcriber) AppOption {
	return func(a *App) {
		a.transcriber = transcriber
	}
}

// WithChatClient sets a custom chat completion client
func WithChatClient(chat ChatClient) AppOption {
	return func(a *App) {
		a.chat = chat
	}
}

// WithSlideExtractor sets a custom slide extractor
func WithSlideExtractor(slides *SlideExtractor) AppOption {
	return func(a *App) {
		a.slides = slides
	}
}

// SetPromptManager sets a new prompt manager
func (app *App) SetPromptManager(pm *PromptManager) {
	app.prompts = pm
}

// Config returns the immutable application configuration.
func (app *App) Config() *Config {
	return app.config
}

// Cache returns the cache manager.
func (app *App) Cache() *Cache {
	return app.cache
}

// Process runs the full download, transcription, and output pipeline for one
// video URL and returns the resulting bundle.
func (app *App) Process(ctx context.Context, videoURL string, force bool) (*Bundle, error) {
	pipeline := NewPipeline(app.fetcher, app.transcriber, app.writer, app.cache, app.config, app.ui)
	return pipeline.Process(ctx, NormalizeURL(videoURL), force)
}

// Metadata resolves a video record without downloading anything.
func (app *App) Metadata(ctx context.Context, videoURL string) (*VideoRecord, error) {
	videoURL = NormalizeURL(videoURL)

	// A cached bundle already carries the record.
	if videoID, err := ExtractVideoID(videoURL); err == nil {
		if entry, err := app.cache.Lookup(videoID); err == nil && entry != nil {
			if record, err := app.cache.LoadRecord(entry.Dir); err == nil {
				app.ui.Verbose("Using cached metadata for %s\n", videoID)
				return record, nil
			}
		}
	}

	var record *VideoRecord
	err := Retry(ctx, app.config.MaxRetries, func() error {
		var err error
		record, err = app.fetcher.Metadata(ctx, videoURL)
		return err
	})
	return record, err
}

// Transcript returns the cached transcript for a video URL, or processes the
// video when none is cached yet.
func (app *App) Transcript(ctx context.Context, videoURL string, force bool) (*Transcript, error) {
	bundle, err := app.Process(ctx, videoURL, force)
	if err != nil {
		return nil, err
	}
	return bundle.Transcript, nil
}

// Analyze generates an AI analysis of a transcript and caches it in the
// bundle directory as analysis.txt.
func (app *App) Analyze(ctx context.Context, bundle *Bundle, force bool) (string, error) {
	analysisPath := filepath.Join(bundle.Dir, AnalysisFile)
	if !force && FileExists(analysisPath) {
		app.ui.Verbose("Using cached analysis for %s\n", bundle.Record.VideoID)
		data, err := os.ReadFile(analysisPath)
		if err != nil {
			return "", fmt.Errorf("reading cached analysis: %w", err)
		}
		return string(data), nil
	}

	if err := ValidateAPIKey(app.config.OpenAIAPIKey); err != nil {
		return "", err
	}

	prompt, err := app.prompts.AnalysisPrompt(bundle.Transcript)
	if err != nil {
		return "", fmt.Errorf("creating analysis prompt: %w", err)
	}

	var analysis string
	err = Retry(ctx, app.config.MaxRetries, func() error {
		var err error
		analysis, err = app.chat.CreateChatCompletion(ctx, app.config.AnalysisModel,
			[]ChatMessage{{Role: "user", Content: prompt}})
		if err != nil {
			return ClassifyTranscriptionError(err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if err := app.writer.WriteAnalysis(bundle.Dir, analysis); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to cache analysis: %v\n", err)
	}

	return analysis, nil
}

// Slides downloads the full video and extracts slide images from it into
// the bundle directory, alongside a manifest and an HTML viewer. A cached
// manifest is reused unless force is set; a cached video download is reused
// the same way.
func (app *App) Slides(ctx context.Context, videoURL string, force bool) ([]Slide, error) {
	videoURL = NormalizeURL(videoURL)
	videoID, err := ExtractVideoID(videoURL)
	if err != nil {
		return nil, err
	}

	var dir string
	if entry, err := app.cache.Lookup(videoID); err == nil && entry != nil {
		dir = entry.Dir
	}
	if dir == "" {
		record, err := app.Metadata(ctx, videoURL)
		if err != nil {
			return nil, err
		}
		dir = app.cache.BundleDir(record)
	}

	if !force && FileExists(filepath.Join(dir, SlidesManifestFile)) {
		app.ui.Verbose("Using cached slides for %s\n", videoID)
		return app.cache.LoadSlides(dir)
	}

	videoPath, err := FindVideoFile(dir)
	if err != nil || force {
		spinner := app.ui.NewSpinner("Downloading video...")
		err = Retry(ctx, app.config.MaxRetries, func() error {
			var err error
			videoPath, err = app.fetcher.Video(ctx, videoURL, dir)
			return err
		})
		spinner.Finish()
		if err != nil {
			return nil, err
		}
	} else {
		app.ui.Verbose("Using cached video for %s\n", videoID)
	}

	spinner := app.ui.NewSpinner("Detecting slide changes...")
	defer spinner.Finish()

	return app.slides.Extract(ctx, videoPath, dir)
}

// NewChat starts a chat session over a transcript.
func (app *App) NewChat(transcript *Transcript) *ChatSession {
	return NewChatSession(app.chat, app.config.AnalysisModel, app.config.MaxRetries, transcript.Text())
}
