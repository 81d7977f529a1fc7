package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	democmd "github.com/louisbranch/worldbridge/internal/cmd/demo"
)

func main() {
	cfg, err := democmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[WORLDBRIDGE] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := democmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to run: %v", err)
	}
}
