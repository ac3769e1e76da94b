package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"whispr/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	if err := app.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "whispr: %v\n", err)
		os.Exit(1)
	}
}
