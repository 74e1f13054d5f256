package main

import (
	"os"

	"github.com/casetrace-systems/casetrace/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
