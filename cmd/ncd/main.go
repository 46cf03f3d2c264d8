package main

import (
	"fmt"
	"os"

	"github.com/hupe1980/ncd/internal/cli"
)

func main() {
	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ncd:", err)
		os.Exit(1)
	}
}
