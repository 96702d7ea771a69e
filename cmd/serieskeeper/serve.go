package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"serieskeeper/internal/logging"
	"serieskeeper/internal/mcp"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func serveCmd() *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(metricsAddr)
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	return cmd
}

func runServe(metricsAddr string) error {
	ctx := context.Background()

	a, err := loadApp()
	if err != nil {
		return err
	}
	tracker, err := a.openTracker()
	if err != nil {
		return err
	}

	if metricsAddr != "" {
		srv := &http.Server{
			Addr:              metricsAddr,
			Handler:           promhttp.HandlerFor(a.metrics.Registry(), promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics listener stopped",
					logging.String(logging.FieldEventType, "metrics_listener_failed"),
					logging.String("addr", metricsAddr),
					logging.Error(err),
				)
			}
		}()
		defer srv.Shutdown(ctx)
	}

	server := mcp.NewServer(a.schema, tracker, version)
	return server.Run(ctx, &sdk.StdioTransport{})
}
