// Command dartfocus serves Korean corporate disclosure lookups through a
// categorized TTL cache.
package main

import (
	"fmt"
	"os"

	"github.com/rshade/dartfocus/internal/cli"
	"github.com/rshade/dartfocus/pkg/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	root := cli.NewRootCmd(version.GetVersion())
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
