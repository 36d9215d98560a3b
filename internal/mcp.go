package internal

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPServer exposes the transcription pipeline as MCP tools.
type MCPServer struct {
	app       *App
	mcpServer *server.MCPServer
	logger    *log.Logger
}

// NewMCPServer creates a new MCP server instance
func NewMCPServer(app *App) *MCPServer {
	mcpServer := server.NewMCPServer(
		"yt2txt-server",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s := &MCPServer{
		app:       app,
		mcpServer: mcpServer,
		logger:    newMCPLogger(app.Config()),
	}

	s.registerTools()

	return s
}

// newMCPLogger opens a file logger in the cache directory. MCP talks over
// stdio, so diagnostics must never go to stdout.
func newMCPLogger(config *Config) *log.Logger {
	if !config.MCPLogEnabled {
		return nil
	}

	if err := os.MkdirAll(config.CacheDir, 0755); err != nil {
		return nil
	}
	logFile, err := os.OpenFile(filepath.Join(config.CacheDir, "mcp.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil
	}

	return log.New(logFile, "[MCP] ", log.LstdFlags|log.Lmicroseconds)
}

func (s *MCPServer) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

// registerTools registers all available MCP tools
func (s *MCPServer) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_video_metadata",
		mcp.WithDescription("Resolve YouTube video metadata (id, title, channel, duration) without downloading anything."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL or ID"),
			mcp.Required(),
		),
	), s.handleGetMetadata)

	s.mcpServer.AddTool(mcp.NewTool("get_transcript",
		mcp.WithDescription("Get the cached transcript for a video (FREE). Fails if the video has not been processed yet - use process_video first."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL or ID"),
			mcp.Required(),
		),
	), s.handleGetTranscript)

	s.mcpServer.AddTool(mcp.NewTool("process_video",
		mcp.WithDescription("Download a video's audio and transcribe it with OpenAI Whisper (PAID, requires OPENAI_API_KEY). Reuses cached results unless force is set. Ask the user before incurring costs."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL or ID"),
			mcp.Required(),
		),
		mcp.WithBoolean("force",
			mcp.Description("Re-download and re-transcribe even if cached"),
		),
	), s.handleProcess)
}

// handleGetMetadata implements the get_video_metadata tool
func (s *MCPServer) handleGetMetadata(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}

	s.logf("get_video_metadata %s", url)

	record, err := s.app.Metadata(ctx, url)
	if err != nil {
		s.logf("metadata error: %v", err)
		return mcp.NewToolResultErrorFromErr("metadata error", err), nil
	}

	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("Video ID: %s\n", record.VideoID))
	buf.WriteString(fmt.Sprintf("Title: %s\n", record.Title))
	buf.WriteString(fmt.Sprintf("Channel: %s\n", record.Channel))
	buf.WriteString(fmt.Sprintf("Duration: %.0f seconds\n", record.Duration))

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(buf.String())},
	}, nil
}

// handleGetTranscript implements the get_transcript tool (cached transcripts only)
func (s *MCPServer) handleGetTranscript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}

	s.logf("get_transcript %s", url)

	videoID, err := ExtractVideoID(NormalizeURL(url))
	if err != nil {
		return mcp.NewToolResultErrorFromErr("invalid video URL", err), nil
	}

	entry, err := s.app.Cache().Lookup(videoID)
	if err != nil || entry == nil || !entry.HasTranscript {
		return mcp.NewToolResultError("no cached transcript - run process_video first (paid)"), nil
	}

	transcript, err := s.app.Cache().LoadTranscript(entry.Dir)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("reading cached transcript", err), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(RenderText(transcript))},
	}, nil
}

// handleProcess implements the process_video tool (paid Whisper transcription)
func (s *MCPServer) handleProcess(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}
	force := request.GetBool("force", false)

	s.logf("process_video %s force=%t", url, force)

	bundle, err := s.app.Process(ctx, url, force)
	if err != nil {
		s.logf("process error: %v", err)
		return mcp.NewToolResultErrorFromErr("processing failed", err), nil
	}

	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("Transcribed %q (%s)\n", bundle.Record.Title, bundle.Transcript.Language))
	buf.WriteString(fmt.Sprintf("Output directory: %s\n\n", bundle.Dir))
	buf.WriteString(RenderText(bundle.Transcript))

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(buf.String())},
	}, nil
}

// Start starts the MCP server using the specified transport
func (s *MCPServer) Start(ctx context.Context, transport string, port int) error {
	if transport == "http" {
		httpServer := server.NewStreamableHTTPServer(s.mcpServer)
		addr := fmt.Sprintf(":%d", port)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logf("listening on %s", addr)
		return httpServer.Start(addr)
	}

	// Default to stdio transport
	return server.ServeStdio(s.mcpServer)
}
