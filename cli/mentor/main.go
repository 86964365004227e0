package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	mentorcmder "github.com/papercomputeco/mentor/cmd/mentor"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := mentorcmder.NewMentorCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
