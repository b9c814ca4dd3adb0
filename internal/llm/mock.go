package llm

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

const defaultMockDelay = 1500 * time.Millisecond

// Each template embeds the user's message verbatim.
var mockResponses = []string{
	`I understand you're asking about "%s". As an AI assistant, I'm here to help you with that. This is a demo response since the API is not configured yet.`,
	`That's an interesting question about "%s". In a production environment, I would provide a detailed response based on the AI model's capabilities.`,
	`Thank you for your message about "%s". To get real AI responses, please configure your API credentials (COBRACHAT_API_URL and COBRACHAT_API_KEY).`,
	`I've processed your query about "%s". This is a simulated response. Configure your AI API to get intelligent, context-aware answers.`,
}

// MockClient returns canned text instead of calling a remote provider. Used
// when no credential is configured. Aside from context cancellation, this
// client cannot fail.
type MockClient struct {
	delay time.Duration

	mu   sync.Mutex
	rand *rand.Rand
}

// NewMockClient instantiates a mock client with the simulated network delay.
func NewMockClient() *MockClient {
	return NewMockClientWithDelay(defaultMockDelay)
}

// NewMockClientWithDelay instantiates a mock client with a custom delay.
func NewMockClientWithDelay(delay time.Duration) *MockClient {
	return &MockClient{
		delay: delay,
		rand:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// GetResponse resolves with a pseudo-randomly chosen template after the
// simulated delay.
func (c *MockClient) GetResponse(ctx context.Context, request *GetResponseRequest) (string, error) {
	timer := time.NewTimer(c.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	c.mu.Lock()
	template := mockResponses[c.rand.Intn(len(mockResponses))]
	c.mu.Unlock()
	return fmt.Sprintf(template, request.Content), nil
}
