package main

import (
	"fmt"
	"os"

	"github.com/irisbuild/iris/cmd/iris/app"
)

// Version information, set at build time via -ldflags.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	a := app.NewApp(version, commit, date)
	if err := a.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
