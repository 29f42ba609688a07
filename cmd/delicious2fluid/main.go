package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MrSnakeDoc/delicious2fluid/internal/command"
	"github.com/MrSnakeDoc/delicious2fluid/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := command.NewRootCmd(version.Version).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %s: %v\n", command.AppName, err)
		stop()
		os.Exit(1)
	}
}
