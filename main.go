package main

import (
	"fmt"
	"os"

	"github.com/tphakala/go-audiofilters/cmd"
	"github.com/tphakala/go-audiofilters/internal/app"
)

func main() {
	settings := &app.Settings{}
	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
