package main

import (
	"os"

	"rendezvous/cmd/rendezvous/commands"
)

func main() {
	if err := commands.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
