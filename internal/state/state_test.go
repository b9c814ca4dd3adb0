package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cobraai/cobrachat/internal/chat"
)

func slot(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "state.json")
}

func TestRoundTrip(t *testing.T) {
	bridge := NewBridge(slot(t))

	first := chat.NewChat()
	attachment := &chat.Attachment{ID: "a1", Name: "cat.png", Kind: chat.AttachmentKindImage}
	first.Messages = append(first.Messages, chat.NewUserMessage("hello", []*chat.Attachment{attachment}))
	first.Messages = append(first.Messages, chat.NewAssistantMessage("hi there"))
	first.Title = "hello"
	second := chat.NewChat()

	snapshot := &Snapshot{
		Chats:         []*chat.Chat{second, first},
		CurrentChatID: first.ID,
		Theme:         ThemeLight,
		Mode:          "creative",
		Persona:       "writer",
	}
	require.NoError(t, bridge.Save(snapshot))

	loaded := bridge.Load()
	require.Equal(t, snapshot, loaded)
}

func TestLoadAbsentSlotYieldsDefaults(t *testing.T) {
	bridge := NewBridge(slot(t))
	snapshot := bridge.Load()
	require.Equal(t, DefaultSnapshot(), snapshot)
	require.Empty(t, snapshot.Chats)
	require.Empty(t, snapshot.CurrentChatID)
	require.Equal(t, ThemeDark, snapshot.Theme)
	require.Equal(t, "standard", snapshot.Mode)
	require.Equal(t, "assistant", snapshot.Persona)
}

func TestLoadCorruptSlotYieldsDefaults(t *testing.T) {
	path := slot(t)
	require.NoError(t, os.WriteFile(path, []byte(`{"chats": [truncated`), 0644))
	require.Equal(t, DefaultSnapshot(), NewBridge(path).Load())
}

func TestLoadAbsentFieldsDefault(t *testing.T) {
	path := slot(t)
	// An older slot that predates the preference fields.
	require.NoError(t, os.WriteFile(path, []byte(`{"chats": [], "theme": ""}`), 0644))
	snapshot := NewBridge(path).Load()
	require.Equal(t, ThemeDark, snapshot.Theme)
	require.Equal(t, "standard", snapshot.Mode)
	require.Equal(t, "assistant", snapshot.Persona)
	require.NotNil(t, snapshot.Chats)
}

func TestSaveFailureIsReportedNotFatal(t *testing.T) {
	// The slot path is a directory, so the write must fail.
	bridge := NewBridge(t.TempDir())
	err := bridge.Save(DefaultSnapshot())
	require.Error(t, err)
}

func TestDeleteOnlyChatRoundTrip(t *testing.T) {
	bridge := NewBridge(slot(t))
	store := chat.NewStore(nil)
	only := store.CreateChat()
	store.OnChange(func() {
		bridge.Save(&Snapshot{
			Chats:         store.Chats(),
			CurrentChatID: store.CurrentChatID(),
			Theme:         ThemeDark,
			Mode:          "standard",
			Persona:       "assistant",
		})
	})

	store.DeleteChat(only.ID)
	require.Empty(t, store.CurrentChatID())

	loaded := bridge.Load()
	require.Empty(t, loaded.Chats)
	require.Empty(t, loaded.CurrentChatID)
}
