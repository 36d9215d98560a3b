package internal

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBundleDir(t *testing.T) {
	cache := NewCache("/tmp/out")

	tests := []struct {
		name string
		rec  *VideoRecord
		want string
	}{
		{
			name: "normal title",
			rec:  &VideoRecord{VideoID: "dQw4w9WgXcQ", Title: "My Video"},
			want: filepath.Join("/tmp/out", "dQw4w9WgXcQ-My Video"),
		},
		{
			name: "title needs sanitizing",
			rec:  &VideoRecord{VideoID: "dQw4w9WgXcQ", Title: `What? A "Video"`},
			want: filepath.Join("/tmp/out", "dQw4w9WgXcQ-What A Video"),
		},
		{
			name: "title sanitizes to nothing",
			rec:  &VideoRecord{VideoID: "dQw4w9WgXcQ", Title: "???"},
			want: filepath.Join("/tmp/out", "dQw4w9WgXcQ"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cache.BundleDir(tt.rec); got != tt.want {
				t.Errorf("BundleDir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCacheLookupNothingCached(t *testing.T) {
	cache := NewCache(t.TempDir())

	entry, err := cache.Lookup("dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if entry != nil {
		t.Errorf("Lookup() = %+v, want nil", entry)
	}
	if entry.Complete() {
		t.Error("nil entry should not be complete")
	}
	if entry.HasAudio() {
		t.Error("nil entry should not have audio")
	}
}

func TestCacheLookupMissingOutDir(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), "does-not-exist"))

	entry, err := cache.Lookup("dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if entry != nil {
		t.Errorf("Lookup() = %+v, want nil", entry)
	}
}

func TestCacheLookupAudioOnly(t *testing.T) {
	outDir := t.TempDir()
	dir := filepath.Join(outDir, "dQw4w9WgXcQ-My Video")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "audio.m4a"), []byte("audio"), 0644); err != nil {
		t.Fatal(err)
	}

	cache := NewCache(outDir)
	entry, err := cache.Lookup("dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if entry == nil {
		t.Fatal("Lookup() = nil, want entry")
	}
	if !entry.HasAudio() {
		t.Error("entry should have audio")
	}
	if entry.Complete() {
		t.Error("entry without transcript should not be complete")
	}
}

func TestCacheLookupIgnoresPartialDownloads(t *testing.T) {
	outDir := t.TempDir()
	dir := filepath.Join(outDir, "dQw4w9WgXcQ-My Video")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "audio.m4a.part"), []byte("partial"), 0644); err != nil {
		t.Fatal(err)
	}

	cache := NewCache(outDir)
	entry, err := cache.Lookup("dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if entry == nil {
		t.Fatal("Lookup() = nil, want entry for existing bundle dir")
	}
	if entry.HasAudio() {
		t.Error("partial download should not count as cached audio")
	}
}

func TestCacheLookupComplete(t *testing.T) {
	outDir := t.TempDir()
	writeTestBundle(t, outDir, &VideoRecord{VideoID: "dQw4w9WgXcQ", Title: "My Video"})

	cache := NewCache(outDir)
	entry, err := cache.Lookup("dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if !entry.Complete() {
		t.Errorf("entry = %+v, want complete", entry)
	}
}

func TestCacheLoadTranscriptAndRecord(t *testing.T) {
	outDir := t.TempDir()
	rec := &VideoRecord{
		VideoID:  "dQw4w9WgXcQ",
		URL:      "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		Title:    "My Video",
		Channel:  "Channel",
		Duration: 212,
	}
	dir := writeTestBundle(t, outDir, rec)

	cache := NewCache(outDir)

	transcript, err := cache.LoadTranscript(dir)
	if err != nil {
		t.Fatalf("LoadTranscript() error: %v", err)
	}
	if transcript.VideoID != rec.VideoID || len(transcript.Segments) != 2 {
		t.Errorf("LoadTranscript() = %+v", transcript)
	}

	loaded, err := cache.LoadRecord(dir)
	if err != nil {
		t.Fatalf("LoadRecord() error: %v", err)
	}
	if *loaded != *rec {
		t.Errorf("LoadRecord() = %+v, want %+v", loaded, rec)
	}
}

func TestCacheList(t *testing.T) {
	outDir := t.TempDir()
	writeTestBundle(t, outDir, &VideoRecord{VideoID: "aaaaaaaaaaa", Title: "First"})
	writeTestBundle(t, outDir, &VideoRecord{VideoID: "bbbbbbbbbbb", Title: "Second"})

	// A bundle without a transcript should be skipped.
	if err := os.MkdirAll(filepath.Join(outDir, "ccccccccccc-Third"), 0755); err != nil {
		t.Fatal(err)
	}

	cache := NewCache(outDir)
	records, err := cache.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("List() returned %d records, want 2", len(records))
	}
}

// writeTestBundle persists a minimal complete bundle and returns its directory.
func writeTestBundle(t *testing.T, outDir string, rec *VideoRecord) string {
	t.Helper()

	cache := NewCache(outDir)
	dir := cache.BundleDir(rec)

	transcript := NewTranscript(rec, "en", []Segment{
		{Start: 0, End: 5, Text: "Hello"},
		{Start: 5, End: 10, Text: "world"},
	})

	writer := NewWriter(false)
	if err := writer.WriteBundle(dir, rec, transcript); err != nil {
		t.Fatalf("writing test bundle: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "audio.m4a"), []byte("audio"), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}
