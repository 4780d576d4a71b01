package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"faceattend/internal/app"
)

func main() {
	agent, err := app.NewAgent()
	if err != nil {
		log.Fatalf("Failed to start agent: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		agent.Close()
		os.Exit(0)
	}()

	if err := agent.Run(ctx); err != nil {
		log.Fatalf("Agent stopped: %v", err)
	}
}
