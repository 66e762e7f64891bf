// Command chartsim replays chart interaction scenarios through the
// interaction store and prints the resulting tooltip state.
package main

import (
	"os"

	"github.com/go-drift/charts/cmd/chartsim/cmd"
)

func main() {
	if err := cmd.Execute(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
