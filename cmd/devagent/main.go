// Command devagent is the CLI entry point: init, index, update, search,
// stats, clean, wired in internal/cliapp.
package main

import (
	"os"

	"github.com/lytics/dev-agent/internal/cliapp"
)

func main() {
	os.Exit(cliapp.Execute())
}
