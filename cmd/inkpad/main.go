// Inkpad is a personal note-taking service with local and Google sign-in.
package main

import (
	"fmt"
	"os"

	"github.com/inkpad/inkpad/cmd/inkpad/commands"
)

// Build-time variables injected via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
