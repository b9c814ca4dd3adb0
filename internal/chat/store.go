package chat

import (
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/cobraai/cobrachat/internal/llm"
)

var (
	// ErrChatNotFound is returned when an operation references a chat id
	// that is no longer in the collection.
	ErrChatNotFound = errors.New("chat not found")
	// ErrSendInFlight is returned when a send is already pending on the
	// targeted chat.
	ErrSendInFlight = errors.New("a send is already in flight for this chat")
	// ErrEmptyMessage is returned when a send carries neither content nor
	// attachments.
	ErrEmptyMessage = errors.New("message has no content or attachments")
)

// Store exclusively owns the chat collection and the current-chat selection.
// It is passed explicitly to its consumers; there are no ambient globals.
type Store struct {
	client llm.Client

	mu            sync.Mutex
	chats         []*Chat
	currentChatID string
	inFlight      map[string]bool
	onChange      func()
}

// NewStore instantiates an empty store backed by the given provider client.
func NewStore(client llm.Client) *Store {
	return &Store{
		client:   client,
		chats:    []*Chat{},
		inFlight: map[string]bool{},
	}
}

// OnChange registers a callback invoked after every mutation. The callback
// runs outside the store lock and may call back into the store.
func (s *Store) OnChange(callback func()) {
	s.mu.Lock()
	s.onChange = callback
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.Lock()
	callback := s.onChange
	s.mu.Unlock()
	if callback != nil {
		callback()
	}
}

// CreateChat allocates a new chat, inserts it at the front of the collection
// and selects it.
func (s *Store) CreateChat() *Chat {
	chat := NewChat()
	s.mu.Lock()
	s.insertLocked(chat)
	s.mu.Unlock()
	s.notify()
	return chat
}

func (s *Store) insertLocked(chat *Chat) {
	s.chats = append([]*Chat{chat}, s.chats...)
	s.currentChatID = chat.ID
}

// SelectChat sets the current chat. Selecting an unknown id is a no-op.
func (s *Store) SelectChat(id string) {
	s.mu.Lock()
	if s.getLocked(id) == nil {
		s.mu.Unlock()
		return
	}
	s.currentChatID = id
	s.mu.Unlock()
	s.notify()
}

// DeleteChat removes a chat. When the current chat is deleted, selection
// moves to the first remaining chat, or to none.
func (s *Store) DeleteChat(id string) {
	s.mu.Lock()
	chats := make([]*Chat, 0, len(s.chats))
	found := false
	for _, chat := range s.chats {
		if chat.ID == id {
			found = true
			continue
		}
		chats = append(chats, chat)
	}
	if !found {
		s.mu.Unlock()
		return
	}
	s.chats = chats
	if s.currentChatID == id {
		s.currentChatID = ""
		if len(s.chats) > 0 {
			s.currentChatID = s.chats[0].ID
		}
	}
	s.mu.Unlock()
	s.notify()
}

// ClearChats removes every chat and clears the selection.
func (s *Store) ClearChats() {
	s.mu.Lock()
	s.chats = []*Chat{}
	s.currentChatID = ""
	s.mu.Unlock()
	s.notify()
}

// AppendMessage appends to the named chat. The chat's title is derived from
// the first message appended to it.
func (s *Store) AppendMessage(chatID string, message *Message) error {
	s.mu.Lock()
	chat := s.getLocked(chatID)
	if chat == nil {
		s.mu.Unlock()
		return errors.Wrapf(ErrChatNotFound, "appending to chat '%s'", chatID)
	}
	s.appendLocked(chat, message)
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Store) appendLocked(chat *Chat, message *Message) {
	if len(chat.Messages) == 0 {
		chat.Title = titleFromContent(message.Content)
	}
	chat.Messages = append(chat.Messages, message)
	chat.UpdatedAt = time.Now().UTC()
}

// Get returns the chat with the given id, or nil.
func (s *Store) Get(id string) *Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(id)
}

func (s *Store) getLocked(id string) *Chat {
	for _, chat := range s.chats {
		if chat.ID == id {
			return chat
		}
	}
	return nil
}

// Chats returns the collection in order, newest first.
func (s *Store) Chats() []*Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	chats := make([]*Chat, len(s.chats))
	copy(chats, s.chats)
	return chats
}

// CurrentChatID returns the selected chat id, or "" when none is selected.
func (s *Store) CurrentChatID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentChatID
}

// CurrentChat returns the selected chat, or nil.
func (s *Store) CurrentChat() *Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentChatID == "" {
		return nil
	}
	return s.getLocked(s.currentChatID)
}

// Restore replaces the collection with a previously persisted one. A current
// id that no longer names a chat degrades to no selection.
func (s *Store) Restore(chats []*Chat, currentChatID string) {
	s.mu.Lock()
	s.chats = make([]*Chat, 0, len(chats))
	for _, chat := range chats {
		if chat != nil {
			s.chats = append(s.chats, chat)
		}
	}
	s.currentChatID = ""
	if s.getLocked(currentChatID) != nil {
		s.currentChatID = currentChatID
	}
	s.mu.Unlock()
}

// Search returns chats whose title or message content contains the query,
// case-insensitively. An empty query returns the whole collection.
func (s *Store) Search(query string) []*Chat {
	query = strings.ToLower(strings.TrimSpace(query))
	s.mu.Lock()
	defer s.mu.Unlock()
	if query == "" {
		chats := make([]*Chat, len(s.chats))
		copy(chats, s.chats)
		return chats
	}
	var results []*Chat
	for _, chat := range s.chats {
		if strings.Contains(strings.ToLower(chat.Title), query) {
			results = append(results, chat)
			continue
		}
		for _, message := range chat.Messages {
			if strings.Contains(strings.ToLower(message.Content), query) {
				results = append(results, chat)
				break
			}
		}
	}
	return results
}
