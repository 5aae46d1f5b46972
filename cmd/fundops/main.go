package main

import (
	"os"

	"github.com/labfund/fundops/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
