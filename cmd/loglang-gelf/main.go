package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"golang.org/x/time/rate"

	"github.com/nicwaller/loglang-gelf"
	"github.com/nicwaller/loglang-gelf/codec"
	"github.com/nicwaller/loglang-gelf/config"
	"github.com/nicwaller/loglang-gelf/filter"
	"github.com/nicwaller/loglang-gelf/gelf"
	"github.com/nicwaller/loglang-gelf/input"
	"github.com/nicwaller/loglang-gelf/output"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}

	loglang.SetupLogging(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	transport, err := newTransport(cfg)
	if err != nil {
		return err
	}
	notifier := gelf.NewNotifier(transport, gelf.NotifierOptions{})
	defer notifier.Close()

	metrics := output.NewGelfMetrics(prometheus.DefaultRegisterer)
	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr)
	}

	pipeline := loglang.NewPipeline("gelf", loglang.PipelineOptions{})
	pipeline.Input(cfg.Input, newInput(cfg), inputFilters(cfg)...)
	pipeline.Output("gelf", output.Gelf(output.GelfOptions{
		Notifier: notifier,
		Builder: gelf.NewBuilder(gelf.BuilderOptions{
			Facility:     cfg.Facility,
			ExemptFields: cfg.NotExtraField,
			CustomFields: cfg.CustomFieldValues(),
		}),
		Sender: cfg.Sender,
		Level:  cfg.Level,
		Conditions: loglang.OutputConditions{
			Type:        cfg.Type,
			Tags:        cfg.Tags,
			ExcludeTags: cfg.ExcludeTags,
		},
		Metrics: metrics,
	}))
	switch cfg.Stdout {
	case "json":
		pipeline.Output("stdout", output.StdOut(output.StdoutOptions{Codec: codec.Json()}))
	case "yaml":
		pipeline.Output("stdout", output.StdOut(output.StdoutOptions{Codec: codec.Yaml()}))
	}

	slog.Info("forwarding events", "address", cfg.Address(), "protocol", cfg.Protocol)
	return pipeline.Run(ctx)
}

func newTransport(cfg *config.Config) (gelf.Transport, error) {
	var transport gelf.Transport
	switch cfg.Protocol {
	case "tcp":
		transport = gelf.NewTCPTransport(cfg.Address(), gelf.TCPOptions{})
	default:
		compression, err := gelf.ParseCompression(cfg.Compression)
		if err != nil {
			return nil, err
		}
		transport, err = gelf.NewUDPTransport(cfg.Address(), gelf.UDPOptions{
			ChunkSize:        cfg.ChunkSize,
			Compression:      compression,
			CompressionLevel: cfg.CompressionLevel,
		})
		if err != nil {
			return nil, err
		}
	}
	if cfg.MaxEventsPerSecond > 0 {
		burst := max(1, int(cfg.MaxEventsPerSecond))
		transport = gelf.RateLimited(transport, rate.NewLimiter(rate.Limit(cfg.MaxEventsPerSecond), burst))
	}
	return transport, nil
}

func newInput(cfg *config.Config) loglang.InputPlugin {
	if cfg.Input == "generator" {
		return input.Generator(input.GeneratorOptions{Interval: 10 * time.Second, Type: cfg.InputType})
	}
	return input.Stdin(input.StdinOptions{Type: cfg.InputType})
}

func inputFilters(cfg *config.Config) []loglang.NamedEntity[loglang.FilterPlugin] {
	var filters []loglang.NamedEntity[loglang.FilterPlugin]
	add := func(name string, f loglang.FilterPlugin) {
		filters = append(filters, loglang.NamedEntity[loglang.FilterPlugin]{Name: name, Value: f})
	}
	for _, field := range sortedKeys(cfg.Rename) {
		add("rename "+field, filter.Rename(field, cfg.Rename[field]))
	}
	for _, field := range sortedKeys(cfg.AddField) {
		add("add_field "+field, filter.Replace(field, cfg.AddField[field]))
	}
	for _, field := range cfg.RemoveField {
		add("remove_field "+field, filter.Remove(field))
	}
	for _, tag := range cfg.AddTag {
		add("add_tag "+tag, filter.AddTag(tag))
	}
	return filters
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	slog.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("metrics server failed", "error", err)
	}
}
