package internal

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// State tracks where a video-processing request is in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateResolving
	StateCacheHit
	StateFetching
	StateTranscribing
	StateWriting
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StateCacheHit:
		return "cache-hit"
	case StateFetching:
		return "fetching"
	case StateTranscribing:
		return "transcribing"
	case StateWriting:
		return "writing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// retryBackoff computes the wait before retry attempt n. Overridable in tests.
var retryBackoff = func(attempt int) time.Duration {
	return time.Duration(1<<attempt) * time.Second
}

// Retry runs fn and retries transient network failures up to maxRetries
// additional attempts with exponential backoff. Any other failure class is
// surfaced immediately.
func Retry(ctx context.Context, maxRetries int, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrTransient) || attempt >= maxRetries {
			return err
		}

		select {
		case <-time.After(retryBackoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Pipeline sequences cache check, audio download, transcription, and output
// writing for one video. Collaborators are pure request/response; the
// filesystem is the only shared state.
type Pipeline struct {
	fetcher     VideoFetcher
	transcriber Transcriber
	writer      *Writer
	cache       *Cache
	config      *Config
	ui          UIManager
	state       State
}

// NewPipeline creates an orchestrator over the given collaborators.
func NewPipeline(fetcher VideoFetcher, transcriber Transcriber, writer *Writer, cache *Cache, config *Config, ui UIManager) *Pipeline {
	return &Pipeline{
		fetcher:     fetcher,
		transcriber: transcriber,
		writer:      writer,
		cache:       cache,
		config:      config,
		ui:          ui,
		state:       StateIdle,
	}
}

// State returns the current lifecycle state of the most recent request.
func (p *Pipeline) State() State {
	return p.state
}

// Process runs the full pipeline for one video URL. With force set, cached
// audio and transcripts are ignored and overwritten. A returned error always
// means no bundle was produced or an existing one was left untouched.
func (p *Pipeline) Process(ctx context.Context, videoURL string, force bool) (*Bundle, error) {
	p.state = StateResolving

	// The transcription credential is required for every non-cached run;
	// checking here fails fast before any download happens.
	if err := ValidateAPIKey(p.config.OpenAIAPIKey); err != nil {
		return nil, p.fail(err)
	}

	videoID, err := ExtractVideoID(videoURL)
	if err != nil {
		return nil, p.fail(err)
	}

	entry, err := p.cache.Lookup(videoID)
	if err != nil {
		return nil, p.fail(fmt.Errorf("%w: %v", ErrWrite, err))
	}

	if entry.Complete() && !force {
		p.state = StateCacheHit
		p.ui.Printf("Using cached transcript for %s\n", videoID)

		transcript, err := p.cache.LoadTranscript(entry.Dir)
		if err != nil {
			return nil, p.fail(fmt.Errorf("%w: %v", ErrWrite, err))
		}
		p.state = StateDone
		return &Bundle{
			Dir:        entry.Dir,
			AudioPath:  entry.AudioPath,
			Record:     transcript.Record(),
			Transcript: transcript,
		}, nil
	}

	p.state = StateFetching
	record, dir, audioPath, err := p.fetch(ctx, videoURL, entry, force)
	if err != nil {
		return nil, p.fail(err)
	}

	p.state = StateTranscribing
	p.ui.Printf("Transcribing audio...\n")

	var result *TranscriptionResult
	err = Retry(ctx, p.config.MaxRetries, func() error {
		var err error
		result, err = p.transcriber.Transcribe(ctx, audioPath)
		return err
	})
	if err != nil {
		// Downloaded audio stays in place so a later run can reuse it.
		return nil, p.fail(err)
	}

	transcript := NewTranscript(record, result.Language, result.Segments)
	if err := transcript.Validate(); err != nil {
		return nil, p.fail(fmt.Errorf("%w: %v", ErrTranscription, err))
	}

	p.state = StateWriting
	if err := p.writer.WriteBundle(dir, record, transcript); err != nil {
		return nil, p.fail(err)
	}

	p.state = StateDone
	return &Bundle{
		Dir:        dir,
		AudioPath:  audioPath,
		Record:     record,
		Transcript: transcript,
	}, nil
}

// fetch resolves the video record and ensures the audio file exists in the
// bundle directory, reusing a cached download unless force is set.
func (p *Pipeline) fetch(ctx context.Context, videoURL string, entry *CacheEntry, force bool) (*VideoRecord, string, string, error) {
	// A cached audio file skips both the metadata fetch and the download.
	if entry.HasAudio() && !force {
		if record, err := p.cache.LoadRecord(entry.Dir); err == nil {
			p.ui.Printf("Using cached audio for %s\n", record.VideoID)
			return record, entry.Dir, entry.AudioPath, nil
		}
		// meta.json is missing or corrupt; fall through and refetch.
	}

	spinner := p.ui.NewSpinner("Fetching video metadata...")
	defer spinner.Finish()

	var record *VideoRecord
	err := Retry(ctx, p.config.MaxRetries, func() error {
		var err error
		record, err = p.fetcher.Metadata(ctx, videoURL)
		return err
	})
	if err != nil {
		return nil, "", "", err
	}

	dir := p.cache.BundleDir(record)
	spinner.Describe("Downloading audio...")
	spinner.Advance()

	var audioPath string
	err = Retry(ctx, p.config.MaxRetries, func() error {
		var err error
		audioPath, err = p.fetcher.Audio(ctx, videoURL, dir)
		return err
	})
	if err != nil {
		return nil, "", "", err
	}

	return record, dir, audioPath, nil
}

func (p *Pipeline) fail(err error) error {
	p.state = StateFailed
	return err
}
