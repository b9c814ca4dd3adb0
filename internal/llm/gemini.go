package llm

import (
	"context"
	"net/url"
	"strings"
	"time"

	genai "github.com/google/generative-ai-go/genai"
	"github.com/pkg/errors"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/cobraai/cobrachat/internal/persona"
)

// Generative-language turn roles. The shape has no system role.
const (
	geminiUserRole  = "user"
	geminiModelRole = "model"
)

// GeminiClient speaks the generative-language shape through the genai SDK.
// The credential travels as a query parameter, not a header.
type GeminiClient struct {
	apiKey   string
	model    string
	endpoint string
	timeout  time.Duration
}

// NewGeminiClient instantiates a client for the given model. A non-default
// endpoint host in apiURL overrides the SDK's endpoint.
func NewGeminiClient(apiURL, apiKey, model string, timeout time.Duration) *GeminiClient {
	endpoint := ""
	if u, err := url.Parse(apiURL); err == nil && u.Host != "" && !strings.Contains(u.Host, geminiHost) {
		endpoint = u.Scheme + "://" + u.Host
	}
	return &GeminiClient{
		apiKey:   apiKey,
		model:    model,
		endpoint: endpoint,
		timeout:  timeout,
	}
}

// GetResponse issues a single generateContent request.
func (c *GeminiClient) GetResponse(ctx context.Context, request *GetResponseRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	options := []option.ClientOption{option.WithAPIKey(c.apiKey)}
	if c.endpoint != "" {
		options = append(options, option.WithEndpoint(c.endpoint))
	}
	client, err := genai.NewClient(ctx, options...)
	if err != nil {
		return "", errors.Wrap(err, "creating client")
	}
	defer client.Close()

	model := client.GenerativeModel(c.model)
	model.SetTemperature(Temperature(request.Mode))
	model.SetMaxOutputTokens(maxOutputTokens)

	contents := geminiContents(request.History, persona.SystemPrompt(request.Persona))
	last := contents[len(contents)-1]
	session := model.StartChat()
	session.History = contents[:len(contents)-1]

	response, err := session.SendMessage(ctx, last.Parts...)
	if err != nil {
		apiError := &googleapi.Error{}
		if errors.As(err, &apiError) {
			return "", &UpstreamError{StatusCode: apiError.Code, Message: apiError.Message}
		}
		return "", errors.Wrap(err, "sending message")
	}
	return geminiReplyText(response), nil
}

// geminiContents maps history to user/model turns. The system instruction is
// folded into the first user turn, or prepended as one when the history
// starts elsewhere.
func geminiContents(history []*Message, systemPrompt string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, message := range history {
		role := geminiModelRole
		if message.Role == UserRole {
			role = geminiUserRole
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(message.Content)},
		})
	}
	if len(contents) > 0 && contents[0].Role == geminiUserRole {
		text := contents[0].Parts[0].(genai.Text)
		contents[0].Parts[0] = genai.Text(systemPrompt + "\n\n" + string(text))
		return contents
	}
	first := &genai.Content{
		Role:  geminiUserRole,
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}
	return append([]*genai.Content{first}, contents...)
}

// geminiReplyText pulls the first candidate's first text part. Anything
// missing or blank reads as no reply.
func geminiReplyText(response *genai.GenerateContentResponse) string {
	if response == nil || len(response.Candidates) == 0 {
		return noResponseText
	}
	content := response.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return noResponseText
	}
	text, ok := content.Parts[0].(genai.Text)
	if !ok || string(text) == "" {
		return noResponseText
	}
	return string(text)
}
