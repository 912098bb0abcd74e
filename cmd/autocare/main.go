package main

import (
	"os"

	"github.com/autocare/autocare/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
