package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/leafmeter/internal/httpapi"
	"github.com/ironsheep/leafmeter/internal/server"
)

func runServe(args []string, debug bool) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", "", "listen address (default from config, :5000)")
	cfgPath := fs.String("config", "", "JSON configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newAnalyzer(*cfgPath, debug)
	if err != nil {
		return err
	}
	listen := a.Config().Server.Addr
	if *addr != "" {
		listen = *addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := httpapi.ListenAndServe(ctx, listen, httpapi.NewHandler(a, nil).Routes()); err != nil {
		return err
	}
	log.Printf("HTTP API stopped")
	return nil
}

func runMCP(args []string, debug bool) error {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "JSON configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newAnalyzer(*cfgPath, debug)
	if err != nil {
		return err
	}
	return server.New(a, Version).Run()
}
