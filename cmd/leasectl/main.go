package main

import (
	"fmt"
	"os"

	"github.com/joseph-ayodele/lease-intake/cmd/leasectl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
