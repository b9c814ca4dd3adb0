package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cobraai/cobrachat/internal/chatcmd"
	"github.com/cobraai/cobrachat/internal/configuration"
	"github.com/cobraai/cobrachat/internal/llm"
)

var rootCmd = &cobra.Command{
	Use:   "cobrachat",
	Short: "A terminal chat client for OpenAI- and Gemini-shaped endpoints",
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if os.Getenv("COBRACHAT_DEBUG") != "" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	config, err := configuration.Parse()
	cobra.CheckErr(err)

	client := llm.NewClient(config)
	rootCmd.AddCommand(chatcmd.NewCmd(client, config))
	cobra.CheckErr(rootCmd.Execute())
}
