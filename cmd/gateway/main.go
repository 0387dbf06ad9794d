// Command gateway runs a long-lived tag-planning service: it loads a
// catalog, polls a Modbus TCP device on an interval using the coalesced
// read/write plan, and serves a read-only admin HTTP surface for
// inspecting the compiled plan.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fenwick-industrial/modbus-gateway/catalog"
	"github.com/fenwick-industrial/modbus-gateway/client"
	"github.com/fenwick-industrial/modbus-gateway/common"
	"github.com/fenwick-industrial/modbus-gateway/gateway"
	"github.com/fenwick-industrial/modbus-gateway/logging"
	"github.com/fenwick-industrial/modbus-gateway/tagplan"
	"github.com/fenwick-industrial/modbus-gateway/transport"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	catalogPath := flag.String("catalog", "", "Path to the tag catalog YAML file")
	deviceHost := flag.String("device", "127.0.0.1:502", "Modbus TCP device host:port")
	adminAddr := flag.String("admin", ":8080", "Admin HTTP listen address")
	pollInterval := flag.Duration("poll-interval", 5*time.Second, "Interval between compile+poll cycles")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *catalogPath == "" {
		fmt.Fprintln(os.Stderr, "usage: gateway -catalog <file.yaml> -device <host:port>")
		os.Exit(2)
	}

	logLevel := common.LevelInfo
	if *debug {
		logLevel = common.LevelDebug
	}
	logger := logging.NewLogger(logging.WithLevel(logLevel))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cat, err := catalog.LoadFile(*catalogPath)
	if err != nil {
		logger.Error(ctx, "load catalog: %v", err)
		os.Exit(1)
	}

	values := func(tagplan.TagRecord) (tagplan.Value, bool) { return tagplan.Value{}, false }

	registry := prometheus.NewRegistry()
	metrics := gateway.NewMetrics(registry)

	admin := gateway.NewAdminServer(cat, values)
	mux := http.NewServeMux()
	mux.Handle("/", admin)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	adminServer := &http.Server{Addr: *adminAddr, Handler: mux}

	go func() {
		logger.Info(ctx, "admin HTTP surface listening on %s", *adminAddr)
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "admin HTTP server: %v", err)
		}
	}()

	tcpClient := client.NewTCPClient(*deviceHost, transport.WithTransportLogger(logger))
	tcpClient.WithOptions(client.WithTCPLogger(logger))

	logger.Info(ctx, "connecting to Modbus device at %s...", *deviceHost)
	if err := tcpClient.Connect(ctx); err != nil {
		logger.Error(ctx, "connect to device %s: %v", *deviceHost, err)
		os.Exit(1)
	}
	defer tcpClient.Disconnect(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info(ctx, "received shutdown signal, stopping gateway...")
		adminServer.Shutdown(ctx)
		cancel()
	}()

	ticker := time.NewTicker(*pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			invocations := []gateway.Invocation{
				{Name: "device", Catalog: cat, Client: tcpClient, Values: values},
			}
			if _, err := gateway.RunAll(ctx, invocations, logger, metrics); err != nil {
				logger.Error(ctx, "poll cycle failed: %v", err)
			}
		}
	}
}
