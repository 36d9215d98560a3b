package internal

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

// Slide artifact filenames inside a bundle directory.
const (
	FramesDir          = "frames"
	SlidesManifestFile = "slides_manifest.json"
	SlidesViewerFile   = "slides_viewer.html"
)

// sceneThreshold is the ffmpeg scene score above which a frame counts as a
// new slide. Lower values are more sensitive and catch more transitions.
const sceneThreshold = 0.25

//go:embed slides.html
var slidesFS embed.FS

var slidesViewerTemplate = template.Must(template.New("slides.html").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).ParseFS(slidesFS, "slides.html"))

// Slide is one extracted slide image with its position in the video.
type Slide struct {
	Timestamp     float64 `json:"timestamp"`
	ImagePath     string  `json:"image_path"`
	TimeFormatted string  `json:"time_formatted"`
}

// SlideExtractor pulls slide images out of a video file using ffmpeg scene
// change detection.
type SlideExtractor struct {
	cmdRunner CommandRunner
	verbose   bool
}

// NewSlideExtractor creates a slide extractor.
func NewSlideExtractor(cmdRunner CommandRunner, verbose bool) *SlideExtractor {
	return &SlideExtractor{cmdRunner: cmdRunner, verbose: verbose}
}

var ptsTimePattern = regexp.MustCompile(`pts_time:([0-9]+(?:\.[0-9]+)?)`)

// Extract detects slide transitions in videoFile and writes one PNG per
// slide into bundleDir/frames, plus a JSON manifest and an HTML viewer in
// the bundle directory. The first frame always counts as a slide so videos
// without any transition still yield one image.
func (s *SlideExtractor) Extract(ctx context.Context, videoFile, bundleDir string) ([]Slide, error) {
	if !FileExists(videoFile) {
		return nil, fmt.Errorf("%w: video file not found: %s", ErrInvalidInput, videoFile)
	}

	framesDir := filepath.Join(bundleDir, FramesDir)
	if err := EnsureDirs(framesDir); err != nil {
		return nil, fmt.Errorf("%w: creating frames directory: %v", ErrWrite, err)
	}

	// showinfo logs one pts_time per selected frame, which pairs each
	// written image with its timestamp.
	filter := fmt.Sprintf("select='eq(n,0)+gt(scene,%g)',showinfo", sceneThreshold)
	output, err := s.cmdRunner.Run(ctx, "ffmpeg",
		"-i", videoFile,
		"-vf", filter,
		"-fps_mode", "vfr",
		"-y", filepath.Join(framesDir, "slide_%03d.png"))
	if err != nil {
		return nil, fmt.Errorf("ffmpeg scene detection failed: %w\nOutput: %s", err, string(output))
	}

	var timestamps []float64
	for _, m := range ptsTimePattern.FindAllStringSubmatch(string(output), -1) {
		ts, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		timestamps = append(timestamps, ts)
	}

	frames, err := filepath.Glob(filepath.Join(framesDir, "slide_*.png"))
	if err != nil {
		return nil, fmt.Errorf("listing frames: %w", err)
	}
	sort.Strings(frames)
	if len(frames) == 0 {
		return nil, nil
	}

	slides := make([]Slide, 0, len(frames))
	for i, frame := range frames {
		var ts float64
		if i < len(timestamps) {
			ts = timestamps[i]
		}
		slides = append(slides, Slide{
			Timestamp:     ts,
			ImagePath:     filepath.ToSlash(filepath.Join(FramesDir, filepath.Base(frame))),
			TimeFormatted: formatMinutes(ts),
		})
	}

	if s.verbose {
		fmt.Printf("Extracted %d slides\n", len(slides))
	}

	if err := writeSlidesManifest(bundleDir, slides); err != nil {
		return nil, err
	}
	if err := writeSlidesViewer(bundleDir, slides); err != nil {
		return nil, err
	}
	return slides, nil
}

// formatMinutes renders a timestamp as MM:SS for slide labels.
func formatMinutes(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func writeSlidesManifest(bundleDir string, slides []Slide) error {
	data, err := json.MarshalIndent(slides, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshaling slide manifest: %v", ErrWrite, err)
	}
	return writeFile(filepath.Join(bundleDir, SlidesManifestFile), append(data, '\n'))
}

func writeSlidesViewer(bundleDir string, slides []Slide) error {
	f, err := os.Create(filepath.Join(bundleDir, SlidesViewerFile))
	if err != nil {
		return fmt.Errorf("%w: creating slide viewer: %v", ErrWrite, err)
	}
	defer f.Close()

	if err := slidesViewerTemplate.Execute(f, slides); err != nil {
		return fmt.Errorf("%w: rendering slide viewer: %v", ErrWrite, err)
	}
	return nil
}
