// thematic recommends thematic anywhere links between the nodes of an
// interactive story.
package main

import (
	"os"

	"github.com/kittclouds/thematic/cmd/thematic/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
