// Command sqlfrag prints the SET and WHERE fragments rendered for key=value
// pairs, and can run the jobs board searches against a database.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(1)
	}
}
