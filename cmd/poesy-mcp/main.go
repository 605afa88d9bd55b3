// Package main provides the poesy MCP server, which exposes the blog API as
// tools over stdio.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/poesyliang/poesy-blog/internal/client"
	"github.com/poesyliang/poesy-blog/internal/config"
	"github.com/poesyliang/poesy-blog/internal/mcpserver"
	"github.com/poesyliang/poesy-blog/internal/tools"
)

const version = "0.1.0"

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the protocol, so logs go to stderr and the log file.
	logger, closeLog := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer closeLog()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	api := client.New(client.ResolveURL(cfg.APIURL, cfg.PortFile), client.WithTimeout(cfg.ClientTimeout))
	logger.Info("poesy-mcp starting", "version", version, "api_url", api.BaseURL())

	srv := mcpserver.New(version, logger)
	tools.RegisterAll(srv.MCPServer(), &tools.Dependencies{
		API:    api,
		Logger: logger,
	})

	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		closeLog()
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
