package main

import (
	"os"

	"github.com/folio-cms/folio/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
