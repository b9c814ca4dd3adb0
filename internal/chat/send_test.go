package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cobraai/cobrachat/internal/llm"
)

// stubClient scripts provider outcomes for send-flow tests.
type stubClient struct {
	mu       sync.Mutex
	response string
	err      error
	release  chan struct{} // when non-nil, the next call blocks until closed
	requests []*llm.GetResponseRequest
}

func (c *stubClient) GetResponse(ctx context.Context, request *llm.GetResponseRequest) (string, error) {
	c.mu.Lock()
	c.requests = append(c.requests, request)
	release := c.release
	c.release = nil
	response, err := c.response, c.err
	c.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if err != nil {
		return "", err
	}
	return response, nil
}

func (c *stubClient) lastRequest() *llm.GetResponseRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.requests) == 0 {
		return nil
	}
	return c.requests[len(c.requests)-1]
}

func (c *stubClient) requestCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

func TestSendCreatesChatAndAppendsReply(t *testing.T) {
	client := &stubClient{response: "Hello back"}
	store := NewStore(client)

	require.NoError(t, store.Send(context.Background(), "Hi", nil, llm.ModeFactual, "developer"))

	chat := store.CurrentChat()
	require.NotNil(t, chat)
	require.Equal(t, "Hi", chat.Title)
	require.Len(t, chat.Messages, 2)
	require.Equal(t, RoleUser, chat.Messages[0].Role)
	require.Equal(t, "Hi", chat.Messages[0].Content)
	require.Equal(t, RoleAssistant, chat.Messages[1].Role)
	require.Equal(t, "Hello back", chat.Messages[1].Content)

	request := client.lastRequest()
	require.Equal(t, "Hi", request.Content)
	require.Equal(t, llm.ModeFactual, request.Mode)
	require.Equal(t, "developer", request.Persona)
	// The history includes the just-appended user message.
	require.Len(t, request.History, 1)
	require.Equal(t, "Hi", request.History[0].Content)
}

func TestSendUsesExistingCurrentChatAndFullHistory(t *testing.T) {
	client := &stubClient{response: "reply two"}
	store := NewStore(client)
	chat := store.CreateChat()
	require.NoError(t, store.AppendMessage(chat.ID, NewUserMessage("one", nil)))
	require.NoError(t, store.AppendMessage(chat.ID, NewAssistantMessage("reply one")))

	require.NoError(t, store.Send(context.Background(), "two", nil, llm.ModeStandard, "assistant"))

	require.Len(t, store.Chats(), 1)
	require.Len(t, chat.Messages, 4)
	history := client.lastRequest().History
	require.Len(t, history, 3)
	require.Equal(t, "one", history[0].Content)
	require.Equal(t, "reply one", history[1].Content)
	require.Equal(t, "two", history[2].Content)
}

func TestSendEmptyMessageRejected(t *testing.T) {
	store := NewStore(&stubClient{})
	require.ErrorIs(t, store.Send(context.Background(), "   ", nil, llm.ModeStandard, "assistant"), ErrEmptyMessage)
	require.Empty(t, store.Chats())

	// Attachments alone are enough to send.
	attachment := &Attachment{ID: "a1", Name: "doc.pdf", Kind: AttachmentKindFile}
	require.NoError(t, store.Send(context.Background(), "", []*Attachment{attachment}, llm.ModeStandard, "assistant"))
	chat := store.CurrentChat()
	require.Len(t, chat.Messages, 2)
	require.Len(t, chat.Messages[0].Attachments, 1)
}

func TestSendUpstreamErrorSynthesizesAssistantMessage(t *testing.T) {
	client := &stubClient{err: &llm.UpstreamError{StatusCode: 500, Message: "boom"}}
	store := NewStore(client)

	// The failure never escapes the send flow.
	require.NoError(t, store.Send(context.Background(), "Hi", nil, llm.ModeStandard, "assistant"))

	chat := store.CurrentChat()
	require.Len(t, chat.Messages, 2)
	require.Equal(t, RoleAssistant, chat.Messages[1].Role)
	require.Contains(t, chat.Messages[1].Content, "Error:")
	require.Contains(t, chat.Messages[1].Content, "500")
	require.Contains(t, chat.Messages[1].Content, "boom")
}

func TestSendRejectsConcurrentSendToSameChat(t *testing.T) {
	release := make(chan struct{})
	client := &stubClient{response: "slow reply", release: release}
	store := NewStore(client)

	done := make(chan error, 1)
	go func() {
		done <- store.Send(context.Background(), "first", nil, llm.ModeStandard, "assistant")
	}()

	require.Eventually(t, func() bool { return client.requestCount() == 1 }, time.Second, 5*time.Millisecond)
	// The user message is visible before the provider call resolves.
	require.Len(t, store.CurrentChat().Messages, 1)

	err := store.Send(context.Background(), "second", nil, llm.ModeStandard, "assistant")
	require.ErrorIs(t, err, ErrSendInFlight)

	close(release)
	require.NoError(t, <-done)

	chat := store.CurrentChat()
	require.Len(t, chat.Messages, 2)
	require.Equal(t, "first", chat.Messages[0].Content)
	require.Equal(t, "slow reply", chat.Messages[1].Content)

	// The guard is released once the turn completes.
	require.NoError(t, store.Send(context.Background(), "third", nil, llm.ModeStandard, "assistant"))
	require.Len(t, chat.Messages, 4)
}

func TestSendToAnotherChatWhileOneIsInFlight(t *testing.T) {
	release := make(chan struct{})
	client := &stubClient{response: "reply", release: release}
	store := NewStore(client)

	blocked := store.CreateChat()
	done := make(chan error, 1)
	go func() {
		done <- store.Send(context.Background(), "to blocked chat", nil, llm.ModeStandard, "assistant")
	}()
	// Wait until the blocked call is inside the provider, holding the
	// blocking channel, before issuing the second send.
	require.Eventually(t, func() bool { return client.requestCount() == 1 }, time.Second, 5*time.Millisecond)

	// A different chat is not serialized behind the first one.
	store.CreateChat()
	require.NoError(t, store.Send(context.Background(), "to other chat", nil, llm.ModeStandard, "assistant"))

	close(release)
	require.NoError(t, <-done)
	require.Len(t, store.Get(blocked.ID).Messages, 2)
}

func TestSendCancelledAppendsNoAssistantMessage(t *testing.T) {
	client := &stubClient{response: "never delivered"}
	store := NewStore(client)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Send(ctx, "Hi", nil, llm.ModeStandard, "assistant")
	require.ErrorIs(t, err, context.Canceled)

	// The user message stays; no assistant message is appended.
	chat := store.CurrentChat()
	require.Len(t, chat.Messages, 1)
	require.Equal(t, RoleUser, chat.Messages[0].Role)
}

func TestSendSurvivesChatDeletionMidFlight(t *testing.T) {
	release := make(chan struct{})
	client := &stubClient{response: "reply", release: release}
	store := NewStore(client)

	chat := store.CreateChat()
	done := make(chan error, 1)
	go func() {
		done <- store.Send(context.Background(), "Hi", nil, llm.ModeStandard, "assistant")
	}()
	require.Eventually(t, func() bool { return client.requestCount() == 1 }, time.Second, 5*time.Millisecond)

	store.DeleteChat(chat.ID)
	close(release)
	require.NoError(t, <-done)
	require.Empty(t, store.Chats())
}

func TestSendLiveShapeA(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Hello back"}}]}`))
	}))
	defer server.Close()

	client := llm.NewOpenAIClient("secret", server.URL+"/chat/completions", "gpt-3.5-turbo", 5*time.Second)
	store := NewStore(client)
	require.NoError(t, store.Send(context.Background(), "Hi", nil, llm.ModeFactual, "developer"))

	chat := store.CurrentChat()
	require.Equal(t, "Hi", chat.Title)
	require.Len(t, chat.Messages, 2)
	require.Equal(t, "Hi", chat.Messages[0].Content)
	require.Equal(t, "Hello back", chat.Messages[1].Content)
}

func TestSendLiveShapeAUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
	}))
	defer server.Close()

	client := llm.NewOpenAIClient("secret", server.URL+"/chat/completions", "gpt-3.5-turbo", 5*time.Second)
	store := NewStore(client)
	require.NoError(t, store.Send(context.Background(), "Hi", nil, llm.ModeStandard, "assistant"))

	chat := store.CurrentChat()
	require.Len(t, chat.Messages, 2)
	require.Equal(t, RoleAssistant, chat.Messages[1].Role)
	require.Contains(t, chat.Messages[1].Content, "500")
	require.Contains(t, chat.Messages[1].Content, "boom")
}
