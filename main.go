package main

import (
	"os"

	"github.com/spigell/transcript-transfer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
