package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/hupe1980/simili"
	"github.com/hupe1980/simili/metric"
	"github.com/hupe1980/simili/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Start an HTTP server that exposes search, recommendation and vectorize endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sc := a.cfg.Server
	if servePort > 0 {
		sc.Port = servePort
	}

	var (
		collector *metric.Collector
		recOpts   []simili.Option
	)
	reg := prometheus.NewRegistry()
	if sc.Metrics {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		collector = metric.New(reg)
		recOpts = append(recOpts, simili.WithMetricsCollector(collector))
	}

	rec, err := a.recommender(recOpts...)
	if err != nil {
		return err
	}

	srv := server.New(rec, func(o *server.Options) {
		o.CORSOrigins = sc.CORSOrigins
		o.RateLimit = sc.RateLimit
		o.RateLimitWindow = sc.RateLimitWindow
		o.MaxLimit = a.cfg.Recommend.MaxLimit
		o.Logger = a.logger
		o.ReadTimeout = sc.ReadTimeout
		o.WriteTimeout = sc.WriteTimeout
		o.ShutdownTimeout = sc.ShutdownTimeout
		if collector != nil {
			o.Metrics = collector
			o.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
		}
	})

	return srv.ListenAndServe(ctx, sc.Addr())
}
