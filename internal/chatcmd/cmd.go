package chatcmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/cobraai/cobrachat/internal/chat"
	"github.com/cobraai/cobrachat/internal/cli"
	"github.com/cobraai/cobrachat/internal/configuration"
	"github.com/cobraai/cobrachat/internal/llm"
	"github.com/cobraai/cobrachat/internal/persona"
	"github.com/cobraai/cobrachat/internal/state"
)

// preferences are the session settings persisted alongside the chats.
type preferences struct {
	theme   string
	mode    string
	persona string
}

// NewCmd instantiates and returns the chat command.
func NewCmd(client llm.Client, config *configuration.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Back and forth chat",
		Long:  "Interactive chat against an OpenAI- or Gemini-shaped endpoint, with local history",
		Args:  cobra.ExactArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			bridge := state.NewBridge(config.StateFile)
			snapshot := bridge.Load()
			store := chat.NewStore(client)
			store.Restore(snapshot.Chats, snapshot.CurrentChatID)
			prefs := &preferences{theme: snapshot.Theme, mode: snapshot.Mode, persona: snapshot.Persona}

			save := func() {
				bridge.Save(&state.Snapshot{
					Chats:         store.Chats(),
					CurrentChatID: store.CurrentChatID(),
					Theme:         prefs.theme,
					Mode:          prefs.mode,
					Persona:       prefs.persona,
				})
			}
			store.OnChange(save)

			cli.Title("COBRA CHAT [%s/%s]", prefs.mode, prefs.persona)
			if config.MockMode() {
				cli.Notice("No API key configured; responses are mocked. Type /help for commands.\n")
			}
			printHistory(store.CurrentChat())

			for {
				text, err := cli.PromptUser()
				if err == io.EOF || err == readline.ErrInterrupt {
					return
				}
				cobra.CheckErr(err)
				text = strings.TrimSpace(text)
				if text == "" {
					continue
				}
				if strings.HasPrefix(text, "/") {
					if quit := runSlashCommand(store, prefs, save, text); quit {
						return
					}
					continue
				}

				if err := store.Send(context.Background(), text, nil, prefs.mode, prefs.persona); err != nil {
					cli.Notice("%v\n", err)
					continue
				}
				current := store.CurrentChat()
				if current == nil || len(current.Messages) == 0 {
					continue
				}
				last := current.Messages[len(current.Messages)-1]
				if last.Role == chat.RoleAssistant {
					cli.AssistantOutput(last.Content + "\n")
				}
			}
		},
	}
	return cmd
}

func printHistory(current *chat.Chat) {
	if current == nil {
		return
	}
	for _, message := range current.Messages {
		switch message.Role {
		case chat.RoleUser:
			cli.UserInput("> %s\n", message.Content)
		case chat.RoleAssistant:
			cli.AssistantOutput(message.Content + "\n")
		}
	}
}

// runSlashCommand dispatches a /command line. Returns true when the session
// should end.
func runSlashCommand(store *chat.Store, prefs *preferences, save func(), text string) bool {
	command, argument, _ := strings.Cut(strings.TrimPrefix(text, "/"), " ")
	argument = strings.TrimSpace(argument)

	switch command {
	case "help":
		printHelp()

	case "new":
		store.CreateChat()
		cli.Notice("started a new chat\n")

	case "list":
		printChatList(store.Chats(), store.CurrentChatID())

	case "open":
		current := resolveChat(store, argument)
		if current == nil {
			cli.Notice("no chat matches '%s'\n", argument)
			break
		}
		store.SelectChat(current.ID)
		cli.Separator()
		printHistory(store.CurrentChat())

	case "delete":
		current := resolveChat(store, argument)
		if current == nil && argument == "" {
			current = store.CurrentChat()
		}
		if current == nil {
			cli.Notice("no chat matches '%s'\n", argument)
			break
		}
		if cli.Confirm(fmt.Sprintf("Delete chat %q?", current.Title)) {
			store.DeleteChat(current.ID)
		}

	case "clear":
		if cli.Confirm("Delete all chats?") {
			store.ClearChats()
		}

	case "search":
		printChatList(store.Search(argument), store.CurrentChatID())

	case "mode":
		switch argument {
		case llm.ModeStandard, llm.ModeCreative, llm.ModeFactual:
			prefs.mode = argument
			save()
		default:
			cli.Notice("modes: %s, %s, %s\n", llm.ModeStandard, llm.ModeCreative, llm.ModeFactual)
		}

	case "persona":
		if !persona.Known(argument) {
			cli.Notice("personas: %s\n", strings.Join(persona.IDs(), ", "))
			break
		}
		prefs.persona = argument
		save()

	case "theme":
		if prefs.theme == state.ThemeDark {
			prefs.theme = state.ThemeLight
		} else {
			prefs.theme = state.ThemeDark
		}
		save()
		cli.Notice("theme: %s\n", prefs.theme)

	case "export":
		current := resolveChat(store, argument)
		if current == nil && argument == "" {
			current = store.CurrentChat()
		}
		if current == nil {
			cli.Notice("no chat matches '%s'\n", argument)
			break
		}
		path := fmt.Sprintf("cobrachat-%.8s.md", current.ID)
		if err := os.WriteFile(path, []byte(current.ExportMarkdown()), 0644); err != nil {
			cli.Notice("export failed: %v\n", err)
			break
		}
		cli.Notice("exported to %s\n", path)

	case "exit", "quit":
		return true

	default:
		cli.Notice("unknown command '/%s', type /help\n", command)
	}
	return false
}

// resolveChat matches a chat by id prefix.
func resolveChat(store *chat.Store, argument string) *chat.Chat {
	if argument == "" {
		return nil
	}
	for _, current := range store.Chats() {
		if strings.HasPrefix(current.ID, argument) {
			return current
		}
	}
	return nil
}

func printChatList(chats []*chat.Chat, currentChatID string) {
	if len(chats) == 0 {
		cli.Notice("no chats\n")
		return
	}
	for _, current := range chats {
		marker := " "
		if current.ID == currentChatID {
			marker = "*"
		}
		cli.UserInput("%s %.8s  %-33s  %3d messages  %s\n",
			marker, current.ID, current.Title, len(current.Messages), current.UpdatedAt.Format("2006-01-02 15:04"))
	}
}

func printHelp() {
	cli.UserInput(`/new              start a new chat
/list             list chats
/open <id>        switch to a chat
/delete [id]      delete a chat (current by default)
/clear            delete all chats
/search <query>   search titles and messages
/mode <m>         sampling mode: standard, creative, factual
/persona <p>      persona preset
/theme            toggle dark/light theme
/export [id]      export a chat to markdown
/exit             leave
`)
}
