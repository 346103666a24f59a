package main

import (
	"os"

	"github.com/docketdive/docketdive/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
