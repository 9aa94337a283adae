// Command adpush exports Active Directory users and pushes them to a
// Coveo Push API source.
package main

import (
	"os"

	"github.com/custodia-labs/adpush/internal/adapters/driving/cli"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.Execute(version, wire); err != nil {
		os.Exit(1)
	}
}
