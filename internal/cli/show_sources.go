// internal/cli/show_sources.go
package arxa

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// showSourcesCmd implements 'show sources', which lists the configured model
// hosts and the paper search endpoint answers are grounded against.
var showSourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Show configured model hosts and the paper search endpoint",
	Run: func(cmd *cobra.Command, args []string) {
		runShowSources()
	},
}

func init() {
	showCmd.AddCommand(showSourcesCmd)
}

func runShowSources() {
	cfg := GetConfig()
	if cfg == nil {
		fmt.Println("configuration is not initialized")
		return
	}

	header := color.New(color.FgCyan, color.Bold).SprintFunc()
	name := color.New(color.FgGreen).SprintFunc()
	detail := color.New(color.FgWhite).SprintFunc()

	fmt.Println(header("Model hosts:"))
	for _, host := range cfg.Hosts {
		hostType := host.Type
		if hostType == "" {
			hostType = "ollama"
		}
		fmt.Printf("  %s  %s\n", name(host.Name), detail(fmt.Sprintf("[%s] %s model=%s", hostType, host.URL, host.Model)))
	}

	fmt.Println()
	fmt.Println(header("Paper search:"))
	fmt.Printf("  %s  %s\n", name("arxiv"), detail(cfg.SearchBaseURL()))
	fmt.Printf("  %s\n", detail(fmt.Sprintf("up to %d abstracts per question, %d context chars", cfg.MaxSearchResults(), cfg.ContextBudgetChars())))
}
