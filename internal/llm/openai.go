package llm

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"

	"github.com/cobraai/cobrachat/internal/persona"
)

// OpenAIClient speaks the chat/completions shape.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient instantiates a client against the given chat/completions
// endpoint URL.
func NewOpenAIClient(apiKey, apiURL, model string, timeout time.Duration) *OpenAIClient {
	openAIConfig := openai.DefaultConfig(apiKey)
	if apiURL != "" {
		openAIConfig.BaseURL = chatCompletionsBaseURL(apiURL)
	}
	openAIConfig.HTTPClient = &http.Client{Timeout: timeout}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(openAIConfig),
		model:  model,
	}
}

// The configured endpoint is the full chat/completions URL; the SDK expects
// its base and appends the /chat/completions suffix itself.
func chatCompletionsBaseURL(apiURL string) string {
	return strings.TrimSuffix(strings.TrimSuffix(apiURL, "/"), "/chat/completions")
}

// GetResponse issues a single chat completion request.
func (c *OpenAIClient) GetResponse(ctx context.Context, request *GetResponseRequest) (string, error) {
	openAIRequest := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    openAIMessages(request.History, request.Persona),
		Temperature: Temperature(request.Mode),
		MaxTokens:   maxOutputTokens,
	}
	response, err := c.client.CreateChatCompletion(ctx, openAIRequest)
	if err != nil {
		apiError := &openai.APIError{}
		if errors.As(err, &apiError) {
			return "", &UpstreamError{StatusCode: apiError.HTTPStatusCode, Message: apiError.Message}
		}
		return "", errors.Wrap(err, "creating chat completion")
	}
	if len(response.Choices) == 0 || response.Choices[0].Message.Content == "" {
		return noResponseText, nil
	}
	return response.Choices[0].Message.Content, nil
}

// openAIMessages builds the wire message array: the persona's system
// instruction first, then the history verbatim.
func openAIMessages(history []*Message, personaID string) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: persona.SystemPrompt(personaID),
	})
	for _, message := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    message.Role,
			Content: message.Content,
		})
	}
	return messages
}
