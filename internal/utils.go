package internal

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ExtractVideoID extracts the stable video identifier from a YouTube URL.
// Accepts watch, youtu.be, shorts, and embed forms, plus a bare 11-character ID.
func ExtractVideoID(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", fmt.Errorf("%w: empty URL", ErrInvalidInput)
	}

	if videoIDPattern.MatchString(rawURL) {
		return rawURL, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	host := strings.TrimPrefix(u.Host, "www.")
	switch host {
	case "youtube.com", "m.youtube.com", "youtube-nocookie.com":
		if v := u.Query().Get("v"); v != "" {
			return v, nil
		}
		// Embed and shorts URLs carry the ID as the last path element.
		if strings.HasPrefix(u.Path, "/embed/") || strings.HasPrefix(u.Path, "/shorts/") {
			parts := strings.Split(strings.Trim(u.Path, "/"), "/")
			if len(parts) == 2 && parts[1] != "" {
				return parts[1], nil
			}
		}
		return "", fmt.Errorf("%w: no video ID in %s", ErrInvalidInput, rawURL)
	case "youtu.be":
		id := strings.Trim(u.Path, "/")
		if id != "" {
			return id, nil
		}
		return "", fmt.Errorf("%w: no video ID in %s", ErrInvalidInput, rawURL)
	default:
		return "", fmt.Errorf("%w: not a YouTube URL: %s", ErrInvalidInput, rawURL)
	}
}

// NormalizeURL turns a bare video ID into a canonical watch URL; full URLs
// pass through unchanged.
func NormalizeURL(arg string) string {
	arg = strings.TrimSpace(arg)
	if videoIDPattern.MatchString(arg) {
		return "https://www.youtube.com/watch?v=" + arg
	}
	return arg
}

var (
	invalidTitleChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRuns    = regexp.MustCompile(`\s+`)
)

// SlugifyTitle converts a video title into a filesystem-safe directory
// component: invalid filename characters removed, whitespace collapsed,
// capped at 80 characters. The cap counts runes so a multi-byte title is
// never cut mid-character.
func SlugifyTitle(title string) string {
	title = invalidTitleChars.ReplaceAllString(title, "")
	title = whitespaceRuns.ReplaceAllString(title, " ")
	title = strings.TrimSpace(title)
	if runes := []rune(title); len(runes) > 80 {
		title = strings.TrimSpace(string(runes[:80]))
	}
	return title
}

// FileExists checks if a file exists
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !os.IsNotExist(err)
}

// EnsureDirs creates directories if needed
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if !FileExists(dir) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
		}
	}
	return nil
}

// cleanupFiles removes temporary files
func cleanupFiles(files ...string) {
	for _, file := range files {
		if err := os.Remove(file); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to remove file %s: %v\n", file, err)
		}
	}
}

// CleanupTempDir removes everything under the scratch directory.
func CleanupTempDir(tempDir string) error {
	if tempDir == "" {
		return nil
	}
	entries, err := os.ReadDir(tempDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading temp dir: %w", err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(tempDir, entry.Name())); err != nil {
			return fmt.Errorf("removing %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// AskUser is a variable so it can be replaced in tests.
var AskUser = func(message string) bool {
	fmt.Printf("%s (y/N): ", message)
	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		response := strings.ToLower(strings.TrimSpace(scanner.Text()))
		return strings.HasPrefix(response, "y")
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
	}
	return false
}

// ReadLine prompts on stdout and reads one trimmed line from stdin.
func ReadLine(prompt string) string {
	fmt.Print(prompt)
	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text())
	}
	return ""
}

// getTerminalWidth gets terminal width with fallback
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}

	if width > 10 {
		return width - 4
	}

	return width
}

// RenderMarkdown renders markdown for terminal display with glamour. When
// stdout is not a TTY the content is returned unchanged.
func RenderMarkdown(content string) (string, error) {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return content, nil
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(getTerminalWidth()),
		glamour.WithColorProfile(termenv.EnvColorProfile()),
	)
	if err != nil {
		return "", fmt.Errorf("creating terminal renderer: %w", err)
	}

	rendered, err := r.Render(content)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}

	return rendered, nil
}
