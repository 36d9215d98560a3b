package internal

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "system", "user", or "assistant"
	Content string `json:"content"`
}

// ChatClient creates chat completions. Abstracted so tests can fake the SDK.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, model string, messages []ChatMessage) (string, error)
}

// OpenAIChat wraps the official OpenAI Go SDK for chat completions.
type OpenAIChat struct {
	client *openai.Client
}

// NewOpenAIChat creates a chat completion client.
func NewOpenAIChat(apiKey string) *OpenAIChat {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIChat{client: &client}
}

// CreateChatCompletion implements ChatClient.
func (c *OpenAIChat) CreateChatCompletion(ctx context.Context, model string, messages []ChatMessage) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)),
	}

	for _, msg := range messages {
		switch msg.Role {
		case "system":
			params.Messages = append(params.Messages, openai.SystemMessage(msg.Content))
		case "assistant":
			params.Messages = append(params.Messages, openai.AssistantMessage(msg.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(msg.Content))
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

const chatSystemPrompt = "You are an assistant answering questions about a video transcript. " +
	"Answer based on the transcript content. If the transcript doesn't contain the " +
	"information, say so. Never guess or make up information."

// ChatSession holds a running conversation over one transcript. The
// transcript is injected as context once; every question and answer is
// appended to the history.
type ChatSession struct {
	client     ChatClient
	model      string
	maxRetries int
	messages   []ChatMessage
}

// NewChatSession starts a conversation seeded with the transcript text.
func NewChatSession(client ChatClient, model string, maxRetries int, transcriptText string) *ChatSession {
	return &ChatSession{
		client:     client,
		model:      model,
		maxRetries: maxRetries,
		messages: []ChatMessage{
			{Role: "system", Content: chatSystemPrompt},
			{Role: "user", Content: "Here is the video transcript:\n\n" + transcriptText},
		},
	}
}

// History returns the conversation so far, excluding the transcript context.
func (s *ChatSession) History() []ChatMessage {
	if len(s.messages) <= 2 {
		return nil
	}
	return s.messages[2:]
}

// Ask sends a question and appends both it and the answer to the history.
// Transient failures are retried; on a surfaced error the question is
// dropped from the history so the session stays consistent.
func (s *ChatSession) Ask(ctx context.Context, question string) (string, error) {
	s.messages = append(s.messages, ChatMessage{Role: "user", Content: question})

	var answer string
	err := Retry(ctx, s.maxRetries, func() error {
		var err error
		answer, err = s.client.CreateChatCompletion(ctx, s.model, s.messages)
		if err != nil {
			return ClassifyTranscriptionError(err)
		}
		return nil
	})
	if err != nil {
		s.messages = s.messages[:len(s.messages)-1]
		return "", err
	}

	s.messages = append(s.messages, ChatMessage{Role: "assistant", Content: answer})
	return answer, nil
}

var _ ChatClient = (*OpenAIChat)(nil)
