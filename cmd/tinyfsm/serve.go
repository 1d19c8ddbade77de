package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/tinyfsm"
	api "github.com/aretw0/tinyfsm/pkg/adapters/http"
	"github.com/aretw0/tinyfsm/pkg/adapters/redis"
	"github.com/aretw0/tinyfsm/pkg/domain"
	"github.com/aretw0/tinyfsm/pkg/idpool"
	"github.com/aretw0/tinyfsm/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve <blueprint.yaml>",
	Short: "Serve machines of one blueprint over HTTP",
	Long: `Starts an HTTP API that creates, inspects, drives and deletes machines running
the blueprint. Prometheus metrics are served on /metrics. With --redis, every lifecycle
event is also published to Redis.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		doc, err := loadDocument(args[0])
		if err != nil {
			return err
		}
		port, _ := cmd.Flags().GetString("port")
		capacity, _ := cmd.Flags().GetInt("capacity")
		contexts, _ := cmd.Flags().GetInt("contexts")
		spawn, _ := cmd.Flags().GetInt("spawn")
		redisAddr, _ := cmd.Flags().GetString("redis")
		redisPrefix, _ := cmd.Flags().GetString("redis-prefix")

		collector := metrics.New()
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collector,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		opts := []tinyfsm.Option{
			tinyfsm.WithLogger(logger),
			tinyfsm.WithOutput(cmd.OutOrStdout()),
			tinyfsm.WithMetrics(collector),
			tinyfsm.WithCapacity(capacity),
			tinyfsm.WithInitialContexts(contexts),
		}
		if redisAddr != "" {
			pub := redis.New(redisAddr, "", 0, redis.WithPrefix(redisPrefix), redis.WithLogger(logger))
			defer pub.Close()

			pingCtx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
			err := pub.Ping(pingCtx)
			cancel()
			if err != nil {
				return err
			}
			opts = append(opts, tinyfsm.WithLifecycleHooks(pub.Hooks()))
			logger.Info("publishing events", "redis", redisAddr, "channel", pub.Channel())
		}

		rt, err := tinyfsm.New(opts...)
		if err != nil {
			return err
		}
		bp, err := rt.Compile(doc)
		if err != nil {
			return err
		}

		handler := api.NewHandler(rt.Manager(), rt.Loop(),
			func() (*domain.Blueprint, error) { return bp, nil },
			api.WithSignals(rt.Signals()),
			api.WithMetrics(reg),
			api.WithLogger(logger),
		)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		loopDone := make(chan error, 1)
		go func() { loopDone <- rt.Run(ctx) }()

		for range spawn {
			if _, err := rt.Spawn(ctx, bp); err != nil {
				return fmt.Errorf("failed to spawn machine: %w", err)
			}
		}

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("server listening", "addr", srv.Addr, "blueprint", doc.Name)
			fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on %s\n", doc.Name, srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			rt.Close()
			return fmt.Errorf("server error: %w", err)

		case err := <-loopDone:
			_ = srv.Close()
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil

		case <-ctx.Done():
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
				_ = srv.Close()
			}
			<-loopDone
			fmt.Fprintln(cmd.OutOrStdout(), "Server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().Int("capacity", idpool.DefaultCapacity, "Maximum number of simultaneous machines")
	serveCmd.Flags().Int("contexts", 0, "Machine cores to preallocate")
	serveCmd.Flags().Int("spawn", 0, "Machines to create at startup")
	serveCmd.Flags().String("redis", "", "Redis address to publish lifecycle events to (e.g. localhost:6379)")
	serveCmd.Flags().String("redis-prefix", "tinyfsm:", "Key and channel prefix used in Redis")
}
