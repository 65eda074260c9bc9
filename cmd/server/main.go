package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tillpoint/print-engine/internal/api"
	"github.com/tillpoint/print-engine/internal/config"
	"github.com/tillpoint/print-engine/internal/discovery"
	"github.com/tillpoint/print-engine/internal/profile"
	"github.com/tillpoint/print-engine/internal/spool"
	"github.com/tillpoint/print-engine/internal/transport"
)

// Version is set during build via ldflags
var Version = "dev"

func main() {
	cfg := config.Load()

	if err := os.MkdirAll(cfg.Server.DataDir, 0o755); err != nil {
		log.Fatalf("failed to create data dir %s: %v", cfg.Server.DataDir, err)
	}

	store, err := profile.NewStore(cfg.ProfilePath())
	if err != nil {
		log.Fatalf("failed to open profile store: %v", err)
	}

	dispatcher := transport.NewDispatcher(cfg.Server.DataDir, cfg.Spool.DialTimeout)

	queue := spool.New(store, dispatcher, cfg.Spool.MaxRequeues)
	defer queue.Stop()

	scanner := discovery.NewScanner(discovery.Config{
		Subnets:      cfg.Discovery.Subnets,
		Ports:        cfg.Discovery.Ports,
		ProbeTimeout: cfg.Discovery.ProbeTimeout,
		BLEWindow:    cfg.Discovery.BLEWindow,
	})

	server := api.NewServer(store, queue, scanner)
	queue.OnUpdate(server.BroadcastJobUpdate)

	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("print engine %s listening on %s", Version, cfg.Server.Addr)
		serverErrChan <- server.Run(cfg.Server.Addr)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrChan:
		log.Fatalf("server error: %v", err)
	case sig := <-sigChan:
		log.Printf("received %s, shutting down", sig)
	}
}
