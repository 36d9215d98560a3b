package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"yt2txt/internal"
)

type stubFetcher struct {
	record     *internal.VideoRecord
	audioCalls int
}

func (s *stubFetcher) Metadata(ctx context.Context, videoURL string) (*internal.VideoRecord, error) {
	return s.record, nil
}

func (s *stubFetcher) Audio(ctx context.Context, videoURL, destDir string) (string, error) {
	s.audioCalls++
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(destDir, "audio.m4a")
	if err := os.WriteFile(path, []byte("audio"), 0644); err != nil {
		return "", err
	}
	return path, nil
}

func (s *stubFetcher) Video(ctx context.Context, videoURL, destDir string) (string, error) {
	return "", errors.New("video download not expected")
}

type stubTranscriber struct {
	calls int
}

func (s *stubTranscriber) Transcribe(ctx context.Context, audioFile string) (*internal.TranscriptionResult, error) {
	s.calls++
	return &internal.TranscriptionResult{
		Language: "en",
		Segments: []internal.Segment{{Start: 0, End: 5, Text: "Hello"}},
	}, nil
}

// feedStdin replaces stdin with a pipe holding the given input for the
// duration of the test.
func feedStdin(t *testing.T, input string) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.WriteString(input); err != nil {
		t.Fatal(err)
	}
	w.Close()

	orig := os.Stdin
	os.Stdin = r
	t.Cleanup(func() {
		os.Stdin = orig
		r.Close()
	})
}

func interactiveTestApp(t *testing.T, fetcher *stubFetcher, transcriber *stubTranscriber) *internal.App {
	t.Helper()

	cfg := &internal.Config{
		OpenAIAPIKey: "sk-test",
		OutDir:       t.TempDir(),
		Model:        "whisper-1",
		MaxRetries:   1,
		Quiet:        true,
	}

	origConfig := config
	config = cfg
	t.Cleanup(func() { config = origConfig })

	origAsk := internal.AskUser
	internal.AskUser = func(message string) bool { return false }
	t.Cleanup(func() { internal.AskUser = origAsk })

	return internal.NewApp(cfg,
		internal.WithFetcher(fetcher),
		internal.WithTranscriber(transcriber),
	)
}

func seedBundle(t *testing.T, outDir string, rec *internal.VideoRecord) {
	t.Helper()
	dir := filepath.Join(outDir, rec.VideoID+"-"+rec.Title)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}

	meta, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, internal.MetaFile), meta, 0644); err != nil {
		t.Fatal(err)
	}

	transcript := internal.NewTranscript(rec, "en", []internal.Segment{{Start: 0, End: 5, Text: "Hello"}})
	data, err := json.Marshal(transcript)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, internal.TranscriptFile), data, 0644); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "audio.m4a"), []byte("audio"), 0644); err != nil {
		t.Fatal(err)
	}
}

func testVideoRecord() *internal.VideoRecord {
	return &internal.VideoRecord{
		VideoID:  "dQw4w9WgXcQ",
		URL:      "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		Title:    "My Video",
		Channel:  "Channel",
		Duration: 212,
	}
}

func TestRunInteractiveForceBypassesCache(t *testing.T) {
	fetcher := &stubFetcher{record: testVideoRecord()}
	transcriber := &stubTranscriber{}
	app := interactiveTestApp(t, fetcher, transcriber)
	seedBundle(t, config.OutDir, testVideoRecord())

	feedStdin(t, "dQw4w9WgXcQ\n")
	if err := runInteractive(context.Background(), app, true); err != nil {
		t.Fatalf("runInteractive() error: %v", err)
	}

	if fetcher.audioCalls != 1 {
		t.Errorf("audio downloaded %d times, want 1 despite cached bundle", fetcher.audioCalls)
	}
	if transcriber.calls != 1 {
		t.Errorf("transcribed %d times, want 1 despite cached bundle", transcriber.calls)
	}
}

func TestRunInteractiveUsesCache(t *testing.T) {
	fetcher := &stubFetcher{record: testVideoRecord()}
	transcriber := &stubTranscriber{}
	app := interactiveTestApp(t, fetcher, transcriber)
	seedBundle(t, config.OutDir, testVideoRecord())

	feedStdin(t, "dQw4w9WgXcQ\n")
	if err := runInteractive(context.Background(), app, false); err != nil {
		t.Fatalf("runInteractive() error: %v", err)
	}

	if fetcher.audioCalls != 0 {
		t.Errorf("audio downloaded %d times, want 0 for a cached bundle", fetcher.audioCalls)
	}
	if transcriber.calls != 0 {
		t.Errorf("transcribed %d times, want 0 for a cached bundle", transcriber.calls)
	}
}

func TestRunInteractiveQuitsOnEmptyLine(t *testing.T) {
	fetcher := &stubFetcher{record: testVideoRecord()}
	transcriber := &stubTranscriber{}
	app := interactiveTestApp(t, fetcher, transcriber)

	feedStdin(t, "\n")
	if err := runInteractive(context.Background(), app, false); err != nil {
		t.Fatalf("runInteractive() error: %v", err)
	}

	if fetcher.audioCalls != 0 || transcriber.calls != 0 {
		t.Error("empty line should quit without processing anything")
	}
}
