// Command nfsim-server hosts a rule-based stochastic simulation behind
// an HTTP API: load a model, step or run it, read observables, and
// subscribe to rule-firing notifications over webhook or websocket.
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "nfsim-server",
		Short: "Serve a rule-based stochastic simulation over HTTP",
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := resolveServerConfig(cmd)
			return serve(cfg)
		},
	}
	bindConfigFlags(serveCmd)

	root.AddCommand(serveCmd)
	return root
}

func serve(cfg ServerConfig) error {
	logger := NewLogger(cfg.LogLevel)
	srv := NewServer(logger, cfg.WorkerCount, time.Duration(cfg.WallClockCapS)*time.Second)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", srv.handleHealth)
	mux.HandleFunc("/model", srv.handleLoadModel)
	mux.HandleFunc("/step", srv.handleStep)
	mux.HandleFunc("/run", srv.handleRun)
	mux.HandleFunc("/observables", srv.handleObservables)
	mux.HandleFunc("/snapshot", srv.handleSnapshot)
	mux.HandleFunc("/stats", srv.handleStats)
	mux.HandleFunc("/notifiers", srv.handleNotifierRoutes)
	mux.HandleFunc("/notifiers/", srv.handleNotifierRoutes)
	mux.HandleFunc("/ws/", srv.handleWebSocket)
	mux.Handle("/metrics", promhttp.HandlerFor(srv.registry, promhttp.HandlerOpts{}))

	httpSrv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	logger.Infof("nfsim-server listening on %s", cfg.Addr)
	return httpSrv.ListenAndServe()
}
