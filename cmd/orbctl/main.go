package main

import (
	"os"

	"github.com/modelrelay/orb-go/cmd/orbctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
