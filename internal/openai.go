package internal

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// TranscriptionResult is the typed transcript returned by the transcription
// service: timed segments plus the detected language. Untyped response shapes
// never leak past this boundary.
type TranscriptionResult struct {
	Language string
	Segments []Segment
}

// Transcriber submits local audio to a speech-to-text service.
type Transcriber interface {
	Transcribe(ctx context.Context, audioFile string) (*TranscriptionResult, error)
}

// transcriptionAPI is the slice of the OpenAI SDK the Whisper client uses,
// kept small so tests can fake it.
type transcriptionAPI interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

// Whisper transcribes audio files through OpenAI's Whisper API.
type Whisper struct {
	api   transcriptionAPI
	audio *Audio
	model string
	limit int64
	ui    UIManager
}

// NewWhisper creates a Whisper transcription client.
func NewWhisper(apiKey string, audio *Audio, model string, limit int64, ui UIManager) *Whisper {
	return &Whisper{
		api:   openai.NewClient(apiKey),
		audio: audio,
		model: model,
		limit: limit,
		ui:    ui,
	}
}

// Transcribe submits an audio file and parses the response into segments.
// Files over the API size limit are split with ffmpeg first; each chunk's
// segment timestamps are shifted by the chunk's offset into the recording.
func (w *Whisper) Transcribe(ctx context.Context, audioFile string) (*TranscriptionResult, error) {
	info, err := os.Stat(audioFile)
	if err != nil {
		return nil, fmt.Errorf("%w: reading audio file: %v", ErrTranscription, err)
	}

	numChunks := int(math.Ceil(float64(info.Size()) / float64(w.limit)))

	chunks := []AudioChunk{{Path: audioFile, Offset: 0}}
	if numChunks > 1 {
		w.ui.Verbose("Audio exceeds the %d MiB API limit, splitting into %d chunks\n",
			w.limit>>20, numChunks)
		chunks, err = w.audio.Split(ctx, audioFile, numChunks)
		if err != nil {
			return nil, fmt.Errorf("%w: splitting audio: %v", ErrTranscription, err)
		}
		defer func() {
			for _, c := range chunks {
				cleanupFiles(c.Path)
			}
		}()
	}

	return w.transcribeChunks(ctx, chunks)
}

// transcribeChunks transcribes chunks sequentially and merges the segments.
// With more than one chunk a progress bar tracks completed chunks.
func (w *Whisper) transcribeChunks(ctx context.Context, chunks []AudioChunk) (*TranscriptionResult, error) {
	result := &TranscriptionResult{}

	var bar ProgressBar
	if len(chunks) > 1 {
		bar = w.ui.NewProgressBar(len(chunks), "Transcribing audio chunks")
		defer bar.Finish()
	}

	for _, chunk := range chunks {
		resp, err := w.api.CreateTranscription(ctx, openai.AudioRequest{
			Model:    w.model,
			FilePath: chunk.Path,
			Format:   openai.AudioResponseFormatVerboseJSON,
		})
		if err != nil {
			return nil, ClassifyTranscriptionError(err)
		}

		if result.Language == "" {
			result.Language = resp.Language
		}

		if len(resp.Segments) == 0 && resp.Text != "" {
			// Some models return plain text only; keep it as a single segment.
			result.Segments = append(result.Segments, Segment{
				Start: chunk.Offset,
				End:   chunk.Offset + resp.Duration,
				Text:  strings.TrimSpace(resp.Text),
			})
		} else {
			for _, seg := range resp.Segments {
				result.Segments = append(result.Segments, Segment{
					Start: seg.Start + chunk.Offset,
					End:   seg.End + chunk.Offset,
					Text:  strings.TrimSpace(seg.Text),
				})
			}
		}

		if bar != nil {
			bar.Advance()
		}
	}

	return result, nil
}

var _ Transcriber = (*Whisper)(nil)
