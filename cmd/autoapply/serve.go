package main

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rafael/autoapply/internal/config"
	"github.com/rafael/autoapply/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for the auto-apply pipeline: resume extraction, job aggregation, matching, and application composition and sending.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg := config.Load()
	if servePort != 0 {
		cfg.Port = strconv.Itoa(servePort)
	}

	deps, cleanup, err := buildDeps(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	return server.New(deps).Start()
}
