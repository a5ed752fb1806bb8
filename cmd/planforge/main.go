package main

import (
	"os"

	"github.com/planforge/planforge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
