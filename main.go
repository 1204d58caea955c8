package main

import (
	"os"

	"github.com/attractorlabs/colloquy/cmd/root"
)

func main() {
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
