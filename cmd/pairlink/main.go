// Package main runs the pairlink invitation engine CLI.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	pairlinkcmd "github.com/twinup/pairlink/internal/cmd/pairlink"
)

func main() {
	cfg, args, err := pairlinkcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[PAIRLINK] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := pairlinkcmd.Run(ctx, cfg, args, os.Stdout); err != nil {
		log.Fatalf("pairlink: %v", err)
	}
}
