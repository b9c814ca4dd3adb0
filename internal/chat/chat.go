package chat

import (
	"time"

	"github.com/google/uuid"
)

// Message roles. Roles are immutable after creation.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Attachment classifications.
const (
	AttachmentKindImage = "image"
	AttachmentKindFile  = "file"
)

const (
	defaultTitle   = "New Chat"
	titleRuneLimit = 30
)

// Attachment is a file or image associated with a message. Attachments are
// not transmitted to the remote provider; this is a documented limitation.
type Attachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
	// PreviewRef is a session-scoped handle owned by the presentation
	// layer. It is never persisted.
	PreviewRef string `json:"-"`
}

// Message is one turn in a chat.
type Message struct {
	ID          string        `json:"id"`
	Role        string        `json:"role"`
	Content     string        `json:"content"`
	Attachments []*Attachment `json:"attachments,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
}

// Chat is a titled, ordered conversation. The message sequence is
// append-only; messages are removable only by deleting the whole chat.
type Chat struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Messages  []*Message `json:"messages"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// NewChat instantiates and returns a new chat.
func NewChat() *Chat {
	now := time.Now().UTC()
	return &Chat{
		ID:        uuid.New().String(),
		Title:     defaultTitle,
		Messages:  []*Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewUserMessage instantiates a user message.
func NewUserMessage(content string, attachments []*Attachment) *Message {
	return &Message{
		ID:          uuid.New().String(),
		Role:        RoleUser,
		Content:     content,
		Attachments: attachments,
		Timestamp:   time.Now().UTC(),
	}
}

// NewAssistantMessage instantiates an assistant message.
func NewAssistantMessage(content string) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// titleFromContent derives a chat title from its first message, truncated to
// a display length.
func titleFromContent(content string) string {
	runes := []rune(content)
	if len(runes) == 0 {
		return defaultTitle
	}
	if len(runes) <= titleRuneLimit {
		return content
	}
	return string(runes[:titleRuneLimit]) + "..."
}
