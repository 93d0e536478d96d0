package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/TechXTT/mdsl/pkg/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "mdsl: %v\n", err)
		stop()
		os.Exit(1)
	}
}
