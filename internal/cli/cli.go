package cli

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/buger/goterm"
	"github.com/chzyer/readline"
	"github.com/fatih/color"
)

var (
	userInputColor       = color.New(color.FgWhite)
	assistantOutputColor = color.New(color.FgCyan)
	titleColor           = color.New(color.FgMagenta, color.Bold)
	separatorColor       = color.New(color.FgHiBlack)
	noticeColor          = color.New(color.FgYellow)
	promptColor          = color.New(color.FgHiBlue)

	width = goterm.Width()
)

// Separator printed to cli.
func Separator() {
	separatorColor.Println(strings.Repeat("-", width))
}

// Title printed to cli.
func Title(text string, args ...any) {
	title := "      " + fmt.Sprintf(text, args...) + "      "
	leftWidth := (width - len(title)) / 2
	if leftWidth < 0 {
		leftWidth = 0
	}
	separator1 := strings.Repeat("-", leftWidth)
	separator2 := strings.Repeat("-", max(width-len(title)-len(separator1), 0))
	titleColor.Println(separator1 + title + separator2)
}

// UserInput printed to cli.
func UserInput(text string, args ...any) {
	userInputColor.Printf(text, args...)
}

// AssistantOutput printed to cli.
func AssistantOutput(text string, args ...any) {
	text = strings.ReplaceAll(text, "%", "%%")
	assistantOutputColor.Printf(text, args...)
}

// Notice printed to cli.
func Notice(text string, args ...any) {
	noticeColor.Printf(text, args...)
}

// PromptUser for a line of input.
func PromptUser() (string, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            promptColor.Sprint("> "),
		InterruptPrompt:   "^C",
		HistoryFile:       "/tmp/cobrachat.history",
		HistorySearchFold: true,
	})
	if err != nil {
		return "", err
	}
	defer rl.Close()
	return rl.Readline()
}

// Confirm a yes/no question.
func Confirm(question string) bool {
	confirm := false
	survey.AskOne(&survey.Confirm{Message: question}, &confirm)
	return confirm
}
