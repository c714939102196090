// Command marketbrief collects, verifies and prints a market news digest.
package main

import (
	"os"

	"github.com/custodia-labs/marketbrief/internal/adapters/driving/cli"
	"github.com/custodia-labs/marketbrief/internal/app"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetDependencies(app.Dependencies())

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
