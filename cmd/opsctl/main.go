// Command opsctl runs console operations from a terminal against the store
// configured in the environment.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
