package main

import (
	"os"

	"github.com/Bidon15/nbtcbridge/cmd/bridgectl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
