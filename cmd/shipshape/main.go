package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/harrison/shipshape/internal/cmd"
)

func main() {
	// Ctrl-C cancels the context; in-flight file operations finish and
	// partial results are still reported.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cmd.NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode distinguishes per-action apply failures (2) from a run that
// could not complete at all (1), so scripts can react to each.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, cmd.ErrPartialFailure) {
		return 2
	}
	return 1
}
