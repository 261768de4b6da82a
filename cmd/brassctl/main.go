package main

import (
	"os"

	"github.com/freeeve/brass-engine/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	os.Exit(cli.ExitCode(err))
}
