// SPDX-License-Identifier: MIT

// Command contactsim runs the synthetic contact-tracking driver.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	simcmd "github.com/katalvlaran/contactsim/internal/cmd/contactsim"
	"github.com/katalvlaran/contactsim/internal/config"
)

func main() {
	cfg, err := simcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := simcmd.Run(ctx, cfg, os.Stderr); err != nil {
		config.Exitf("Error: %v", err)
	}
}
