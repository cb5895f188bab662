package main

import (
	"os"

	"github.com/stanza-dev/stanza/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
