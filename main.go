package main

import (
	"github.com/toolsuite/shortener/cmd"

	// Subcommands register themselves with the root command via init().
	_ "github.com/toolsuite/shortener/cmd/cli"
	_ "github.com/toolsuite/shortener/cmd/server"
)

func main() {
	cmd.Execute()
}
