// SPDX-License-Identifier: MIT

// Command contactmerge combines the per-rank artifacts of a run.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	mergecmd "github.com/katalvlaran/contactsim/internal/cmd/contactmerge"
	"github.com/katalvlaran/contactsim/internal/config"
)

func main() {
	cfg, err := mergecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mergecmd.Run(ctx, cfg, os.Stderr); err != nil {
		config.Exitf("Error: %v", err)
	}
}
