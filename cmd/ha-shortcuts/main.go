package main

import (
	"fmt"
	"os"

	"hashortcuts/internal/cli"

	"golang.design/x/hotkey/mainthread"
)

const version = "0.1.0"

func main() {
	// macOS delivers hotkey events only on the main thread.
	mainthread.Init(func() {
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	})
}

func run() error {
	return cli.NewRootCmd(version).Execute()
}
