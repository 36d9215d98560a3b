package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Artifact filenames inside a bundle directory.
const (
	MetaFile       = "meta.json"
	TranscriptFile = "transcript.json"
	TextFile       = "transcript_with_timestamps.txt"
	SubtitleFile   = "transcript.srt"
	AnalysisFile   = "analysis.txt"
)

// Bundle is the set of persisted artifacts for one video.
type Bundle struct {
	Dir        string
	AudioPath  string
	Record     *VideoRecord
	Transcript *Transcript
}

// ArtifactPaths lists the rendered transcript artifacts in the bundle.
func (b *Bundle) ArtifactPaths() []string {
	return []string{
		filepath.Join(b.Dir, MetaFile),
		filepath.Join(b.Dir, TranscriptFile),
		filepath.Join(b.Dir, TextFile),
		filepath.Join(b.Dir, SubtitleFile),
	}
}

// Writer renders transcript artifacts into a bundle directory. Rendering is
// deterministic: rerunning with the same transcript produces byte-identical
// files.
type Writer struct {
	verbose bool
}

// NewWriter creates an output writer.
func NewWriter(verbose bool) *Writer {
	return &Writer{verbose: verbose}
}

// WriteBundle persists meta.json, transcript.json, the timestamped text
// rendering, and the SRT rendering into dir. Existing files are overwritten.
func (w *Writer) WriteBundle(dir string, rec *VideoRecord, t *Transcript) error {
	if err := EnsureDirs(dir); err != nil {
		return fmt.Errorf("%w: creating bundle directory: %v", ErrWrite, err)
	}

	if w.verbose {
		fmt.Printf("Writing transcript files to %s\n", dir)
	}

	meta, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshaling metadata: %v", ErrWrite, err)
	}
	if err := writeFile(filepath.Join(dir, MetaFile), append(meta, '\n')); err != nil {
		return err
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshaling transcript: %v", ErrWrite, err)
	}
	if err := writeFile(filepath.Join(dir, TranscriptFile), append(data, '\n')); err != nil {
		return err
	}

	if err := writeFile(filepath.Join(dir, TextFile), []byte(RenderText(t))); err != nil {
		return err
	}

	return writeFile(filepath.Join(dir, SubtitleFile), []byte(RenderSRT(t)))
}

// WriteAnalysis persists the analysis text into the bundle directory.
func (w *Writer) WriteAnalysis(dir, analysis string) error {
	return writeFile(filepath.Join(dir, AnalysisFile), []byte(analysis))
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}
