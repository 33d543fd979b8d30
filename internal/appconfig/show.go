package appconfig

import (
	"fmt"
	"io"
)

// ShowConfig prints the current configuration summary.
func ShowConfig(out io.Writer, file string, cfg *Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	if cfg == nil {
		fmt.Fprintln(out, "Configuration not loaded.")
		return
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Debug:             %v\n", cfg.Debug)
	fmt.Fprintf(out, "  Tool Mode:         %v\n", cfg.ToolMode)
	fmt.Fprintf(out, "  Disable Streaming: %v\n", cfg.DisableStreaming)
	fmt.Fprintf(out, "  Request Timeout:   %s\n", cfg.RequestTimeout())
	fmt.Fprintf(out, "  Max Results:       %d\n", cfg.MaxSearchResults())
	fmt.Fprintf(out, "  Context Budget:    %d chars\n", cfg.ContextBudgetChars())
	fmt.Fprintf(out, "  Search URL:        %s\n", cfg.SearchBaseURL())
	fmt.Fprintf(out, "  Log File:          %s\n", cfg.LogFilePath())
	if path := cfg.TranscriptFilePath(); path != "" {
		fmt.Fprintf(out, "  Transcript:        %s\n", path)
	} else {
		fmt.Fprintf(out, "  Transcript:        (in-memory only)\n")
	}

	fmt.Fprintf(out, "\nHosts (%d):\n", len(cfg.Hosts))
	for _, host := range cfg.Hosts {
		fmt.Fprintf(out, "  - %s (%s) %s model=%s\n", host.Name, host.Type, host.URL, host.Model)
	}
}
