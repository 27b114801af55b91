package main

import (
	"os"

	"github.com/mwheeler/gridsim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
