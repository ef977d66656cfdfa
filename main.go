package main

import (
	"log/slog"
	"os"

	"github.com/kareempogba0/B-Laban/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		slog.Error("Command failed", "err", err)
		os.Exit(1)
	}
}
