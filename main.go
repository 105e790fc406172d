package main

import (
	"os"

	"github.com/VitoPalumboPodcast/Invalsi/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
