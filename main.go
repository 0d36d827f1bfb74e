package main

import (
	"os"

	"github.com/intelligrit/guess-tally/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
