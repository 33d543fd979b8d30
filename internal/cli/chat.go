// internal/cli/chat.go
package arxa

import (
	"github.com/spf13/cobra"

	"github.com/arxa-ai/arxa/internal/tui"
)

var startGUI = tui.Start

// chatCmd represents the 'chat' command.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start a chat session",
	Long:  `The 'chat' command starts an interactive session that answers questions using arXiv paper abstracts.`,
	Run: func(cmd *cobra.Command, args []string) {
		runChat()
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
