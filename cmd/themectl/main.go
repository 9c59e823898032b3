// Command themectl manages mail themes from the terminal and applies them to a
// local preview profile.
package main

import (
	"os"

	"github.com/codr1/mailthemes/cmd/themectl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
