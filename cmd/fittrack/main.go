package main

import (
	"fmt"
	"os"

	"github.com/dukerupert/fittrack/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.Error("error: "+err.Error()))
		os.Exit(1)
	}
}
