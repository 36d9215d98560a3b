package internal

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// PromptData for template injection
type PromptData struct {
	Title      string
	Channel    string
	URL        string
	Transcript string
}

// PromptManager loads and renders the analysis prompt template. The template
// comes from, in order: an explicit prompt string, an explicit template file,
// or prompt.txt in the config directory.
type PromptManager struct {
	promptFile   string
	promptString string
	configDir    string
}

// NewPromptManager creates a new prompt manager
func NewPromptManager(configDir, promptSetting string) *PromptManager {
	pm := &PromptManager{
		configDir: configDir,
	}

	if promptSetting != "" {
		if IsLikelyFilePath(promptSetting) && FileExists(promptSetting) {
			pm.promptFile = promptSetting
		} else {
			pm.promptString = promptSetting
		}
	}

	return pm
}

// AnalysisPrompt builds the analysis prompt for a transcript.
func (pm *PromptManager) AnalysisPrompt(t *Transcript) (string, error) {
	var tmplContent string

	if pm.promptString != "" {
		tmplContent = pm.promptString
	} else {
		promptFile := pm.promptFile
		if promptFile == "" {
			promptFile = filepath.Join(pm.configDir, "prompt.txt")
		}

		content, err := os.ReadFile(promptFile)
		if err != nil {
			// Fall back to the embedded default when no file was
			// materialized yet (e.g. in tests).
			content, err = defaultFS.ReadFile("prompt.txt")
			if err != nil {
				return "", fmt.Errorf("reading prompt template: %w", err)
			}
		}
		tmplContent = string(content)
	}

	tmpl, err := template.New("prompt").Parse(tmplContent)
	if err != nil {
		return "", fmt.Errorf("parsing prompt template: %w", err)
	}

	data := PromptData{
		Title:      t.Title,
		Channel:    t.Channel,
		URL:        t.URL,
		Transcript: t.Text(),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing prompt template: %w", err)
	}

	return buf.String(), nil
}

// IsLikelyFilePath uses heuristics to determine if a string is likely a file path
func IsLikelyFilePath(s string) bool {
	if strings.Contains(s, "/") || strings.Contains(s, "\\") {
		return true
	}

	if strings.Contains(s, ".txt") || strings.Contains(s, ".md") ||
		strings.Contains(s, ".template") || strings.Contains(s, ".tmpl") {
		return true
	}

	// Long strings are almost certainly inline prompts.
	if len(s) > 200 {
		return false
	}

	return !strings.Contains(s, " ") && !strings.Contains(s, "\n")
}
