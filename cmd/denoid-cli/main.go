package main

import (
	"fmt"
	"os"

	"github.com/denoland-id/denoid/pkg/cli"
)

func main() {
	rootCmd := cli.NewRootCommand(cli.DefaultEnv())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
