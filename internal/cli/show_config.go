// internal/cli/show_config.go
package arxa

import (
	"os"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"

	"github.com/arxa-ai/arxa/internal/appconfig"
)

// showConfigCmd implements 'show config', which prints the merged
// configuration after flag overrides have been applied.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show config settings ensuring that the JSON configs are loaded properly and overridden by flags accordingly.`,
	Run: func(cmd *cobra.Command, args []string) {
		runShowConfig()
	},
}

func init() {
	showCmd.AddCommand(showConfigCmd)
}

func runShowConfig() {
	cfg := GetConfig()
	var file string
	if cfg != nil {
		file = cfg.ConfigPath
	}
	appconfig.ShowConfig(os.Stdout, file, cfg)

	if cfg != nil && cfg.Debug {
		pp.Println(cfg)
	}
}
