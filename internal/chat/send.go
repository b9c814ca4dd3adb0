package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/cobraai/cobrachat/internal/llm"
)

// Send runs one full chat turn: it ensures a current chat exists, appends the
// user message, invokes the provider with the chat's full history and appends
// the assistant reply. A provider failure never escapes; it is appended as a
// synthesized assistant message instead. Cancelling ctx before the reply
// arrives appends nothing and returns the context error.
//
// One send may be in flight per chat at a time; a concurrent second send to
// the same chat is rejected with ErrSendInFlight before any mutation.
func (s *Store) Send(ctx context.Context, content string, attachments []*Attachment, mode, persona string) error {
	if strings.TrimSpace(content) == "" && len(attachments) == 0 {
		return ErrEmptyMessage
	}

	s.mu.Lock()
	chat := s.getLocked(s.currentChatID)
	if chat == nil {
		chat = NewChat()
		s.insertLocked(chat)
	}
	if s.inFlight[chat.ID] {
		s.mu.Unlock()
		return errors.Wrapf(ErrSendInFlight, "chat '%s'", chat.ID)
	}
	s.inFlight[chat.ID] = true
	s.appendLocked(chat, NewUserMessage(content, attachments))
	history := make([]*llm.Message, 0, len(chat.Messages))
	for _, message := range chat.Messages {
		history = append(history, &llm.Message{Role: message.Role, Content: message.Content})
	}
	chatID := chat.ID
	s.mu.Unlock()

	// The user message is visible (and persisted) before the provider call.
	s.notify()
	defer func() {
		s.mu.Lock()
		delete(s.inFlight, chatID)
		s.mu.Unlock()
	}()

	reply, err := s.client.GetResponse(ctx, &llm.GetResponseRequest{
		Content: content,
		History: history,
		Mode:    mode,
		Persona: persona,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		reply = fmt.Sprintf("Error: %s", err.Error())
	}

	s.mu.Lock()
	// The chat may have been deleted while the request was in flight.
	if chat := s.getLocked(chatID); chat != nil {
		s.appendLocked(chat, NewAssistantMessage(reply))
	}
	s.mu.Unlock()
	s.notify()
	return nil
}
