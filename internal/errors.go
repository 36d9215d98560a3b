package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"

	openaiv2 "github.com/openai/openai-go/v2"
	openai "github.com/sashabaranov/go-openai"
)

// Failure classes surfaced by the pipeline. Wrapped with fmt.Errorf("...: %w", ...)
// so callers can branch with errors.Is while keeping a human-readable message.
var (
	// ErrInvalidInput marks malformed or unsupported video URLs. Never retried.
	ErrInvalidInput = errors.New("invalid video URL")

	// ErrDownload marks unavailable, private, or region-blocked videos. Never retried.
	ErrDownload = errors.New("video download failed")

	// ErrTransient marks timeouts and connection resets. Retried up to MAX_RETRIES.
	ErrTransient = errors.New("transient network error")

	// ErrAuth marks a missing or rejected API credential. Never retried.
	ErrAuth = errors.New("authentication failed")

	// ErrQuota marks quota or billing failures from the transcription service. Never retried.
	ErrQuota = errors.New("quota or billing limit exceeded")

	// ErrTranscription marks non-retryable transcription failures such as an
	// oversized payload or an unparseable response.
	ErrTranscription = errors.New("transcription failed")

	// ErrWrite marks filesystem failures while persisting outputs. Fatal, never retried.
	ErrWrite = errors.New("writing output failed")
)

// ClassifyTranscriptionError maps an OpenAI SDK error onto the pipeline's
// failure classes. Untyped response shapes stop here; callers only ever see
// the sentinel classes above.
func ClassifyTranscriptionError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyAPIStatus(apiErr.HTTPStatusCode, apiErr.Message)
	}

	var v2Err *openaiv2.Error
	if errors.As(err, &v2Err) {
		return classifyAPIStatus(v2Err.StatusCode, v2Err.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == 401 || reqErr.HTTPStatusCode == 403 {
			return fmt.Errorf("%w: request rejected (%d)", ErrAuth, reqErr.HTTPStatusCode)
		}
		if reqErr.HTTPStatusCode >= 500 {
			return fmt.Errorf("%w: server error %d", ErrTransient, reqErr.HTTPStatusCode)
		}
	}

	if isNetworkError(err) {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}

	return fmt.Errorf("%w: %v", ErrTranscription, err)
}

// classifyAPIStatus maps an HTTP status and error message from the speech or
// chat API onto a failure class.
func classifyAPIStatus(status int, message string) error {
	msg := strings.ToLower(message)
	switch {
	case status == 401 || status == 403:
		return fmt.Errorf("%w: invalid API key (%s)", ErrAuth, message)
	case strings.Contains(msg, "quota"), strings.Contains(msg, "billing"):
		return fmt.Errorf("%w: %s", ErrQuota, message)
	case status == 413 || strings.Contains(msg, "maximum content size"):
		return fmt.Errorf("%w: audio payload too large (%s)", ErrTranscription, message)
	case status == 429:
		// Rate limited but not out of quota; worth retrying.
		return fmt.Errorf("%w: rate limited", ErrTransient)
	case status >= 500:
		return fmt.Errorf("%w: server error %d", ErrTransient, status)
	default:
		return fmt.Errorf("%w: %s", ErrTranscription, message)
	}
}

// ClassifyDownloadError maps a yt-dlp failure onto the pipeline's failure
// classes using the tool's stderr output.
func ClassifyDownloadError(err error, stderr string) error {
	if err == nil {
		return nil
	}

	out := strings.ToLower(stderr)
	switch {
	case strings.Contains(out, "private video"),
		strings.Contains(out, "video unavailable"),
		strings.Contains(out, "not available in your country"),
		strings.Contains(out, "removed by the uploader"),
		strings.Contains(out, "age-restricted"):
		return fmt.Errorf("%w: %s", ErrDownload, firstLine(stderr))
	case strings.Contains(out, "unable to download"),
		strings.Contains(out, "timed out"),
		strings.Contains(out, "connection reset"),
		strings.Contains(out, "temporary failure"):
		return fmt.Errorf("%w: %s", ErrTransient, firstLine(stderr))
	case isNetworkError(err):
		return fmt.Errorf("%w: %v", ErrTransient, err)
	default:
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
}

// isNetworkError reports whether err looks like a transport-level failure.
func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	if s == "" {
		return "no error output"
	}
	return s
}
