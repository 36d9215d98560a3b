package internal

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// VideoRecord contains the resolved identity and metadata of one video.
// It is created once per fetch and written verbatim to meta.json.
type VideoRecord struct {
	VideoID  string  `json:"video_id"`
	URL      string  `json:"url"`
	Title    string  `json:"title"`
	Channel  string  `json:"channel"`
	Duration float64 `json:"duration"`
}

// Segment is a timestamped span of transcribed text.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript is the full transcription output for one video.
type Transcript struct {
	VideoID  string    `json:"video_id"`
	URL      string    `json:"url"`
	Title    string    `json:"title"`
	Channel  string    `json:"channel"`
	Duration float64   `json:"duration"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

// NewTranscript combines a video record with transcription output.
func NewTranscript(rec *VideoRecord, language string, segments []Segment) *Transcript {
	return &Transcript{
		VideoID:  rec.VideoID,
		URL:      rec.URL,
		Title:    rec.Title,
		Channel:  rec.Channel,
		Duration: rec.Duration,
		Language: language,
		Segments: segments,
	}
}

// Record returns the video record embedded in the transcript.
func (t *Transcript) Record() *VideoRecord {
	return &VideoRecord{
		VideoID:  t.VideoID,
		URL:      t.URL,
		Title:    t.Title,
		Channel:  t.Channel,
		Duration: t.Duration,
	}
}

// Validate checks segment ordering: end >= start within each segment and
// monotonically non-decreasing start times across the sequence.
func (t *Transcript) Validate() error {
	for i, seg := range t.Segments {
		if seg.End < seg.Start {
			return fmt.Errorf("segment %d: end %.3f before start %.3f", i, seg.End, seg.Start)
		}
		if i > 0 && seg.Start < t.Segments[i-1].Start {
			return fmt.Errorf("segment %d: start %.3f before previous start %.3f",
				i, seg.Start, t.Segments[i-1].Start)
		}
	}
	return nil
}

// Text returns the plain transcript text, one segment per line, without timestamps.
func (t *Transcript) Text() string {
	var sb strings.Builder
	for i, seg := range t.Segments {
		sb.WriteString(strings.TrimSpace(seg.Text))
		if i < len(t.Segments)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// FormatSeconds formats a duration in seconds as HH:MM:SS, truncating
// (not rounding) to whole seconds.
func FormatSeconds(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// FormatSRTTimestamp formats a duration in seconds as an SRT timestamp,
// HH:MM:SS,mmm. Rounded to the nearest millisecond so values like 0.3,
// which have no exact binary representation, render exactly.
func FormatSRTTimestamp(seconds float64) string {
	totalMillis := int(math.Round(seconds * 1000))
	total := totalMillis / 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", total/3600, (total%3600)/60, total%60, totalMillis%1000)
}

// RenderText renders the transcript as plain text with timestamps, one line
// per segment: [HH:MM:SS - HH:MM:SS] text.
func RenderText(t *Transcript) string {
	var sb strings.Builder
	for _, seg := range t.Segments {
		fmt.Fprintf(&sb, "[%s - %s] %s\n", FormatSeconds(seg.Start), FormatSeconds(seg.End), seg.Text)
	}
	return sb.String()
}

// RenderSRT renders the transcript in SubRip format, cues numbered from 1.
func RenderSRT(t *Transcript) string {
	var sb strings.Builder
	for i, seg := range t.Segments {
		fmt.Fprintf(&sb, "%d\n", i+1)
		fmt.Fprintf(&sb, "%s --> %s\n", FormatSRTTimestamp(seg.Start), FormatSRTTimestamp(seg.End))
		fmt.Fprintf(&sb, "%s\n\n", seg.Text)
	}
	return sb.String()
}

// ParseSRT parses SubRip content back into segments. Multi-line cue text is
// joined with single spaces.
func ParseSRT(content string) ([]Segment, error) {
	var segments []Segment

	for block := range strings.SplitSeq(strings.ReplaceAll(content, "\r\n", "\n"), "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.Split(block, "\n")
		if len(lines) < 2 {
			return nil, fmt.Errorf("malformed SRT cue: %q", block)
		}
		if _, err := strconv.Atoi(strings.TrimSpace(lines[0])); err != nil {
			return nil, fmt.Errorf("malformed SRT cue number: %q", lines[0])
		}

		start, end, err := parseSRTTiming(lines[1])
		if err != nil {
			return nil, err
		}

		segments = append(segments, Segment{
			Start: start,
			End:   end,
			Text:  strings.Join(lines[2:], " "),
		})
	}

	return segments, nil
}

func parseSRTTiming(line string) (float64, float64, error) {
	parts := strings.Split(line, " --> ")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed SRT timing line: %q", line)
	}

	start, err := parseSRTTimestamp(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	end, err := parseSRTTimestamp(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func parseSRTTimestamp(ts string) (float64, error) {
	var h, m, s, ms int
	if _, err := fmt.Sscanf(ts, "%d:%d:%d,%d", &h, &m, &s, &ms); err != nil {
		return 0, fmt.Errorf("malformed SRT timestamp %q: %w", ts, err)
	}
	return float64(h*3600+m*60+s) + float64(ms)/1000, nil
}
