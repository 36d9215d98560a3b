package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/lrstanley/go-ytdlp"
)

// VideoFetcher resolves video metadata and downloads audio-only or full
// video streams.
type VideoFetcher interface {
	Metadata(ctx context.Context, videoURL string) (*VideoRecord, error)
	Audio(ctx context.Context, videoURL, destDir string) (string, error)
	Video(ctx context.Context, videoURL, destDir string) (string, error)
}

// YouTube implements VideoFetcher using yt-dlp.
type YouTube struct {
	verbose bool
}

// NewYouTube creates a new YouTube downloader
func NewYouTube(verbose bool) *YouTube {
	return &YouTube{verbose: verbose}
}

// videoInfo is the subset of yt-dlp's JSON output the fetcher needs.
type videoInfo struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Channel  string  `json:"channel"`
	Uploader string  `json:"uploader"`
	Duration float64 `json:"duration"`
}

// Metadata fetches video details and resolves them into a VideoRecord.
func (yt *YouTube) Metadata(ctx context.Context, videoURL string) (*VideoRecord, error) {
	videoID, err := ExtractVideoID(videoURL)
	if err != nil {
		return nil, err
	}

	if yt.verbose {
		fmt.Println("Extracting video metadata...")
	}

	dl := ytdlp.New().
		DumpSingleJSON(). // Get all info in JSON format
		NoPlaylist().     // Don't process playlists
		SkipDownload()    // Don't download the actual video

	result, err := dl.Run(ctx, videoURL)
	if err != nil {
		var stderr string
		if result != nil {
			stderr = result.Stderr
		}
		if yt.verbose {
			fmt.Printf("Metadata extraction error: %v\n", err)
			fmt.Printf("Stderr: %s\n", stderr)
		}
		return nil, ClassifyDownloadError(err, stderr)
	}

	var info videoInfo
	if err := json.Unmarshal([]byte(result.Stdout), &info); err != nil {
		return nil, fmt.Errorf("%w: parsing video metadata: %v", ErrDownload, err)
	}

	channel := info.Channel
	if channel == "" {
		channel = info.Uploader
	}

	record := &VideoRecord{
		VideoID:  videoID,
		URL:      videoURL,
		Title:    info.Title,
		Channel:  channel,
		Duration: info.Duration,
	}

	if yt.verbose {
		fmt.Printf("Title: %s\n", record.Title)
		fmt.Printf("Channel: %s\n", record.Channel)
		fmt.Printf("Duration: %.2f seconds\n", record.Duration)
	}

	return record, nil
}

// Audio downloads the best available audio-only stream into destDir as
// audio.<ext>, keeping the container format the source service returns.
// No local transcoding happens; yt-dlp writes a .part file while the
// download is in flight, so an aborted run never leaves a final audio file.
func (yt *YouTube) Audio(ctx context.Context, videoURL, destDir string) (string, error) {
	if yt.verbose {
		fmt.Println("Downloading audio...")
	}

	if err := EnsureDirs(destDir); err != nil {
		return "", fmt.Errorf("%w: creating output directory: %v", ErrWrite, err)
	}

	outputPath := filepath.Join(destDir, "audio.%(ext)s")

	dl := ytdlp.New().
		Format("bestaudio[ext=m4a]/bestaudio"). // Best audio-only stream, m4a preferred
		NoPlaylist().
		ForceOverwrites(). // Force mode replaces cached audio in place
		Output(outputPath)

	result, err := dl.Run(ctx, videoURL)
	if err != nil {
		var stderr string
		if result != nil {
			stderr = result.Stderr
		}
		if yt.verbose {
			fmt.Printf("Audio download error: %v\n", err)
			fmt.Printf("Stderr: %s\n", stderr)
		}
		return "", ClassifyDownloadError(err, stderr)
	}

	audioFile, err := FindAudioFile(destDir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownload, err)
	}

	if yt.verbose {
		fmt.Printf("Audio downloaded: %s\n", audioFile)
	}

	return audioFile, nil
}

// Video downloads a full video stream into destDir as video.<ext>. Slide
// extraction needs readable text, so higher resolutions are preferred and
// anything below 360p is taken only as a last resort.
func (yt *YouTube) Video(ctx context.Context, videoURL, destDir string) (string, error) {
	if yt.verbose {
		fmt.Println("Downloading video...")
	}

	if err := EnsureDirs(destDir); err != nil {
		return "", fmt.Errorf("%w: creating output directory: %v", ErrWrite, err)
	}

	outputPath := filepath.Join(destDir, "video.%(ext)s")

	dl := ytdlp.New().
		Format("best[height>=720]/best[height>=480]/best[height>=360]/best").
		NoPlaylist().
		ForceOverwrites().
		Output(outputPath)

	result, err := dl.Run(ctx, videoURL)
	if err != nil {
		var stderr string
		if result != nil {
			stderr = result.Stderr
		}
		if yt.verbose {
			fmt.Printf("Video download error: %v\n", err)
			fmt.Printf("Stderr: %s\n", stderr)
		}
		return "", ClassifyDownloadError(err, stderr)
	}

	videoFile, err := FindVideoFile(destDir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownload, err)
	}

	if yt.verbose {
		fmt.Printf("Video downloaded: %s\n", videoFile)
	}

	return videoFile, nil
}

// FindAudioFile locates the downloaded audio file in a bundle directory.
// In-flight .part files are ignored so partial downloads never count.
func FindAudioFile(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "audio.*"))
	if err != nil {
		return "", fmt.Errorf("searching for audio file: %w", err)
	}

	for _, match := range matches {
		ext := filepath.Ext(match)
		if ext == ".part" || ext == ".json" || ext == ".ytdl" {
			continue
		}
		return match, nil
	}

	return "", fmt.Errorf("no audio file found in %s", dir)
}

// FindVideoFile locates the downloaded video file in a bundle directory,
// ignoring in-flight .part files.
func FindVideoFile(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "video.*"))
	if err != nil {
		return "", fmt.Errorf("searching for video file: %w", err)
	}

	for _, match := range matches {
		ext := filepath.Ext(match)
		if ext == ".part" || ext == ".json" || ext == ".ytdl" {
			continue
		}
		return match, nil
	}

	return "", fmt.Errorf("no video file found in %s", dir)
}

var _ VideoFetcher = (*YouTube)(nil)
