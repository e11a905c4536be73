// Command fern matches products across vendor catalogs and serves the
// comparison API.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
