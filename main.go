package main

import (
	"os"

	"github.com/leafo/filenode/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
