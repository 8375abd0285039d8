// Command statekit drives the state core from the terminal: a persisted todo
// list, the scripted widgets and stories pages, and snapshot housekeeping.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/statekit/internal/cli"
)

func main() {
	ctx := cli.NewSignalContext(context.Background())
	defer ctx.Cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
