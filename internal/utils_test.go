package internal

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"watch URL", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"watch URL with extra params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ", false},
		{"short URL", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"short URL with params", "https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ", false},
		{"embed URL", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"shorts URL", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"bare ID", "dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"mobile URL", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"empty", "", "", true},
		{"not a video URL", "https://example.com/watch?v=dQw4w9WgXcQ", "", true},
		{"ID too short", "abc123", "", true},
		{"ID with invalid chars", "dQw4w9WgXc!", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractVideoID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractVideoID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("ExtractVideoID(%q) error = %v, want ErrInvalidInput", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ExtractVideoID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare ID", "dQw4w9WgXcQ", "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"full URL unchanged", "https://youtu.be/dQw4w9WgXcQ", "https://youtu.be/dQw4w9WgXcQ"},
		{"garbage unchanged", "not-a-video", "not-a-video"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeURL(tt.input); got != tt.want {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSlugifyTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "My Video", "My Video"},
		{"reserved characters stripped", `What? A "Video": <Part 1/2>`, "What A Video Part 12"},
		{"whitespace collapsed", "too   many \t spaces", "too many spaces"},
		{"empty", "", ""},
		{"only reserved characters", `<>:"/\|?*`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SlugifyTitle(tt.input); got != tt.want {
				t.Errorf("SlugifyTitle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSlugifyTitleLength(t *testing.T) {
	long := ""
	for range 20 {
		long += "0123456789"
	}

	got := SlugifyTitle(long)
	if len(got) > 80 {
		t.Errorf("SlugifyTitle() returned %d characters, want at most 80", len(got))
	}
}

func TestSlugifyTitleMultiByte(t *testing.T) {
	long := strings.Repeat("日本語のタイトル", 20)

	got := SlugifyTitle(long)
	if !utf8.ValidString(got) {
		t.Errorf("SlugifyTitle() returned invalid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n > 80 {
		t.Errorf("SlugifyTitle() returned %d runes, want at most 80", n)
	}
}

func TestIsLikelyCommand(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"transcrib", true},
		{"serve", true},
		{"dQw4w9WgXcQ", false},
		{"https://youtu.be/dQw4w9WgXcQ", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsLikelyCommand(tt.input); got != tt.want {
			t.Errorf("IsLikelyCommand(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
