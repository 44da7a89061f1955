// The main package for the webcrawler executable.
package main

import (
	"fmt"
	"os"

	"github.com/crawlcore/webcrawler/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
