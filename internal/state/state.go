// Package state persists the application's whole state in a single slot: one
// JSON file holding the chat collection and the session preferences. The slot
// is treated as an unvalidated blob; anything unreadable degrades to defaults.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/cobraai/cobrachat/internal/chat"
	"github.com/cobraai/cobrachat/internal/llm"
	"github.com/cobraai/cobrachat/internal/persona"
)

// Themes.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Snapshot is the persisted slot schema. Fields absent from an older slot
// keep their defaults, so the schema can grow while staying
// backward-readable.
type Snapshot struct {
	Chats         []*chat.Chat `json:"chats"`
	CurrentChatID string       `json:"currentChatId"`
	Theme         string       `json:"theme"`
	Mode          string       `json:"mode"`
	Persona       string       `json:"persona"`
}

// DefaultSnapshot returns the documented defaults: no chats, no selection,
// dark theme, standard sampling, default persona.
func DefaultSnapshot() *Snapshot {
	return &Snapshot{
		Chats:   []*chat.Chat{},
		Theme:   ThemeDark,
		Mode:    llm.ModeStandard,
		Persona: persona.DefaultID,
	}
}

// Bridge reads and writes the snapshot slot. It never owns the data; it only
// takes and restores snapshots on behalf of the store.
type Bridge struct {
	path string
}

// NewBridge instantiates a bridge over the slot at path.
func NewBridge(path string) *Bridge {
	return &Bridge{path: path}
}

// Load reads the slot. An absent or corrupt slot degrades to the defaults;
// it never raises to the caller.
func (b *Bridge) Load() *Snapshot {
	bytes, err := os.ReadFile(b.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", b.path).Msg("reading saved state, starting from defaults")
		}
		return DefaultSnapshot()
	}
	snapshot := DefaultSnapshot()
	if err := json.Unmarshal(bytes, snapshot); err != nil {
		log.Warn().Err(err).Str("path", b.path).Msg("discarding corrupt saved state")
		return DefaultSnapshot()
	}
	if snapshot.Chats == nil {
		snapshot.Chats = []*chat.Chat{}
	}
	if snapshot.Theme == "" {
		snapshot.Theme = ThemeDark
	}
	if snapshot.Mode == "" {
		snapshot.Mode = llm.ModeStandard
	}
	if snapshot.Persona == "" {
		snapshot.Persona = persona.DefaultID
	}
	return snapshot
}

// Save writes the slot. A failure is reported, never fatal to the caller.
func (b *Bridge) Save(snapshot *Snapshot) error {
	bytes, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("marshaling state snapshot")
		return errors.Wrap(err, "marshaling snapshot")
	}
	if err := os.MkdirAll(filepath.Dir(b.path), 0755); err != nil {
		log.Error().Err(err).Str("path", b.path).Msg("creating state directory")
		return errors.Wrap(err, "creating state directory")
	}
	if err := os.WriteFile(b.path, bytes, 0644); err != nil {
		log.Error().Err(err).Str("path", b.path).Msg("writing state snapshot")
		return errors.Wrap(err, "writing snapshot")
	}
	return nil
}
