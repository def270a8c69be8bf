package main

import (
	"os"

	"github.com/edouard-claude/tilde/internal/cli"
)

func main() {
	exitCode := cli.Run(os.Args)
	os.Exit(exitCode)
}
