// Command stylist checks and fixes style rules in Go source trees.
package main

import (
	"fmt"
	"os"

	"github.com/wharflab/stylist/cmd/stylist/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
