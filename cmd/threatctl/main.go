package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/bryanwahyu/threatlens/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCmd(nil).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
