// The main package for the metallyrics executable.
package main

import (
	"github.com/darkstats/metallyrics/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
