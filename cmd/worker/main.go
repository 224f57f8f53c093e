package main

import (
	"os"

	"github.com/metashield/jirasync/internal/interfaces/cli/worker"
)

func main() {
	if err := worker.NewCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
