package main

import (
	"os"

	"github.com/contactkeval/option-greeks/cmd/option-greeks/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
