// Command annotate manages annotation workspaces and moves local data into
// the remote store.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/annotate/internal/adapters/driving/cli"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	if err := cli.Execute(ctx, buildServices); err != nil {
		os.Exit(1)
	}
}
