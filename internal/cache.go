package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Cache reports which artifacts already exist on disk for a video identity.
// Bundles never expire; staleness is managed by the user deleting directories.
type Cache struct {
	outDir string
}

// NewCache creates a cache manager over the output directory.
func NewCache(outDir string) *Cache {
	return &Cache{outDir: outDir}
}

// CacheEntry describes the cached state of one video identity.
type CacheEntry struct {
	Dir           string
	AudioPath     string
	HasTranscript bool
}

// Complete reports whether both the audio and the transcript exist, meaning
// the whole pipeline can be skipped.
func (e *CacheEntry) Complete() bool {
	return e != nil && e.AudioPath != "" && e.HasTranscript
}

// HasAudio reports whether a finished audio download exists.
func (e *CacheEntry) HasAudio() bool {
	return e != nil && e.AudioPath != ""
}

// BundleDir returns the deterministic bundle directory for a video:
// OUT_DIR/<video_id>-<sanitized_title>, or just the ID when the title
// sanitizes to nothing.
func (c *Cache) BundleDir(rec *VideoRecord) string {
	slug := SlugifyTitle(rec.Title)
	if slug == "" {
		return filepath.Join(c.outDir, rec.VideoID)
	}
	return filepath.Join(c.outDir, rec.VideoID+"-"+slug)
}

// Lookup finds the bundle directory for a video identity and reports which
// artifacts it holds. Returns nil when nothing is cached.
func (c *Cache) Lookup(videoID string) (*CacheEntry, error) {
	dir, err := c.findBundleDir(videoID)
	if err != nil || dir == "" {
		return nil, err
	}

	entry := &CacheEntry{Dir: dir}

	if audio, err := FindAudioFile(dir); err == nil {
		entry.AudioPath = audio
	}
	entry.HasTranscript = FileExists(filepath.Join(dir, TranscriptFile))

	return entry, nil
}

// findBundleDir scans the output directory for a bundle keyed by videoID.
func (c *Cache) findBundleDir(videoID string) (string, error) {
	entries, err := os.ReadDir(c.outDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading output directory: %w", err)
	}

	var matches []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == videoID || strings.HasPrefix(name, videoID+"-") {
			matches = append(matches, name)
		}
	}
	if len(matches) == 0 {
		return "", nil
	}

	// Deterministic pick if multiple dirs share the ID prefix.
	sort.Strings(matches)
	return filepath.Join(c.outDir, matches[0]), nil
}

// LoadTranscript reads a cached transcript.json from a bundle directory.
func (c *Cache) LoadTranscript(dir string) (*Transcript, error) {
	data, err := os.ReadFile(filepath.Join(dir, TranscriptFile))
	if err != nil {
		return nil, fmt.Errorf("reading cached transcript: %w", err)
	}

	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing cached transcript: %w", err)
	}
	return &t, nil
}

// LoadRecord reads a cached meta.json from a bundle directory.
func (c *Cache) LoadRecord(dir string) (*VideoRecord, error) {
	data, err := os.ReadFile(filepath.Join(dir, MetaFile))
	if err != nil {
		return nil, fmt.Errorf("reading cached metadata: %w", err)
	}

	var rec VideoRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing cached metadata: %w", err)
	}
	return &rec, nil
}

// LoadSlides reads a cached slide manifest from a bundle directory.
func (c *Cache) LoadSlides(dir string) ([]Slide, error) {
	data, err := os.ReadFile(filepath.Join(dir, SlidesManifestFile))
	if err != nil {
		return nil, fmt.Errorf("reading cached slides: %w", err)
	}

	var slides []Slide
	if err := json.Unmarshal(data, &slides); err != nil {
		return nil, fmt.Errorf("parsing cached slides: %w", err)
	}
	return slides, nil
}

// List returns the cached bundles that hold a transcript, in directory name
// order. Used by the web UI and the MCP server.
func (c *Cache) List() ([]*VideoRecord, error) {
	entries, err := os.ReadDir(c.outDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading output directory: %w", err)
	}

	var records []*VideoRecord
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(c.outDir, entry.Name())
		if !FileExists(filepath.Join(dir, TranscriptFile)) {
			continue
		}
		rec, err := c.LoadRecord(dir)
		if err != nil {
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}
