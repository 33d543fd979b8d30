// cmd/arxa/main.go
package main

import (
	cmd "github.com/arxa-ai/arxa/internal/cli"
)

var run = cmd.Execute

// main starts the arxa CLI application by delegating to the
// cobra root command defined in the arxa package.
func main() {
	run()
}
