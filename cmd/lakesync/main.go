// Command lakesync mirrors a content dataset into a local document store.
package main

import (
	"os"

	"github.com/custodia-labs/lakesync/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
