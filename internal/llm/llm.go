package llm

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cobraai/cobrachat/internal/configuration"
)

// Message roles on the wire.
const (
	UserRole      = "user"
	AssistantRole = "assistant"
	SystemRole    = "system"
)

// Message is one turn of conversation history, provider-agnostic.
type Message struct {
	Role    string
	Content string
}

// Sampling modes.
const (
	ModeStandard = "standard"
	ModeCreative = "creative"
	ModeFactual  = "factual"
)

// Temperature for a sampling mode. Unknown modes sample like standard.
func Temperature(mode string) float32 {
	switch mode {
	case ModeCreative:
		return 0.9
	case ModeFactual:
		return 0.3
	default:
		return 0.7
	}
}

// Generation-length cap applied to every live request.
const maxOutputTokens = 1000

// Returned when the provider answers successfully but with no reply text.
const noResponseText = "No response generated."

// GetResponseRequest carries a full chat turn to the provider.
type GetResponseRequest struct {
	// Content is the newest user message, already included in History.
	Content string
	// History is the chat's full message list, oldest first.
	History []*Message
	// Mode selects the sampling temperature.
	Mode string
	// Persona keys the system instruction catalog.
	Persona string
}

// Client resolves one chat turn into reply text. A single attempt is made;
// there are no retries and no partial results.
type Client interface {
	GetResponse(ctx context.Context, request *GetResponseRequest) (string, error)
}

// Shape identifies a supported provider wire format.
type Shape string

const (
	// ShapeOpenAI is the chat/completions format: flat role+content message
	// array, bearer-token header, reply at choices[0].message.content.
	ShapeOpenAI Shape = "openai"
	// ShapeGemini is the generative-language format: contents with
	// user/model turns, key as query parameter, reply at
	// candidates[0].content.parts[0].text.
	ShapeGemini Shape = "gemini"
)

const geminiHost = "generativelanguage.googleapis.com"

// DetectShape inspects the endpoint host. Any host other than the
// generative-language one is assumed to speak the chat/completions shape.
func DetectShape(apiURL string) Shape {
	u, err := url.Parse(apiURL)
	if err == nil && strings.Contains(u.Host, geminiHost) {
		return ShapeGemini
	}
	return ShapeOpenAI
}

// UpstreamError reports a non-success provider response.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Message)
}

// NewClient instantiates the provider client for the given configuration.
// An absent credential forces mock mode. The wire shape is taken from the
// configuration when pinned, and detected from the endpoint host otherwise.
func NewClient(config *configuration.Config) Client {
	if config.MockMode() {
		return NewMockClient()
	}
	shape := Shape(config.Provider)
	if shape != ShapeOpenAI && shape != ShapeGemini {
		shape = DetectShape(config.APIURL)
	}
	timeout := time.Duration(config.RequestTimeout) * time.Second
	if shape == ShapeGemini {
		return NewGeminiClient(config.APIURL, config.APIKey, config.Model, timeout)
	}
	return NewOpenAIClient(config.APIKey, config.APIURL, config.Model, timeout)
}
