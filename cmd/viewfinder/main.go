package main

import (
	"os"

	"Viewfinder/cmd/viewfinder/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
