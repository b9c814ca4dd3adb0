package chat

import (
	"strings"
	"time"
)

// ExportMarkdown renders the chat as a markdown document.
func (c *Chat) ExportMarkdown() string {
	var b strings.Builder
	b.WriteString("# " + c.Title + "\n\n")
	b.WriteString("Created: " + c.CreatedAt.Format(time.RFC3339) + "\n\n")
	b.WriteString("---\n\n")
	for _, message := range c.Messages {
		role := "**User**"
		if message.Role == RoleAssistant {
			role = "**Assistant**"
		}
		b.WriteString(role + " (" + message.Timestamp.Format("2006-01-02 15:04") + "):\n\n")
		b.WriteString(message.Content)
		for _, attachment := range message.Attachments {
			b.WriteString("\n\n> attached " + attachment.Kind + ": " + attachment.Name)
		}
		b.WriteString("\n\n---\n\n")
	}
	return b.String()
}
