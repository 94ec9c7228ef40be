package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/duncaneddy/SATPLAN/internal/catalog"
	"github.com/duncaneddy/SATPLAN/internal/config"
	"github.com/duncaneddy/SATPLAN/internal/dataset"
	"github.com/duncaneddy/SATPLAN/internal/logging"
	"github.com/duncaneddy/SATPLAN/internal/observability"
	"github.com/duncaneddy/SATPLAN/internal/orbit"
)

const defaultOutputDir = "data/spacecraft"

func newGenerateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate constellation datasets for every inclination family and size",
		Long: `Generate one JSON dataset per (inclination family, constellation size)
pair under <output>/<family>/spacecraft_<count>_<family>.json.

Sizes without a Walker configuration are skipped with a warning. A size whose
Walker configuration cannot be laid out fails on its own; the remaining sizes
are still generated and the command exits non-zero at the end.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, v)
		},
	}

	flags := cmd.Flags()
	flags.String("config", "", "YAML benchmark matrix file (defaults to the built-in matrix)")
	flags.String("output", defaultOutputDir, "base output directory")
	flags.Int("workers", 0, "concurrent constellation builds (0 = GOMAXPROCS)")
	flags.Bool("czml", false, "also write a CZML snapshot next to each dataset")
	flags.String("metrics-file", "", "write Prometheus metrics in textfile format to this path after the run")
	flags.String("metrics-addr", "", "serve Prometheus /metrics on this address while generating")
	_ = v.BindPFlags(flags)

	return cmd
}

func runGenerate(cmd *cobra.Command, v *viper.Viper) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	log := loggerFor(cmd, v)
	output := v.GetString("output")

	cfg := dataset.DefaultConfig()
	if path := v.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			log.Error(ctx, "failed to load benchmark matrix", logging.String("path", path), logging.Err(err))
			return err
		}
		cfg = loaded
	}

	log.Info(ctx, "Generating datasets",
		logging.String("output", output),
		logging.Int("families", len(cfg.Families)),
		logging.Any("sizes", cfg.Sizes),
		logging.Any("walker_sizes", cfg.WalkerSizes()),
	)

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		return err
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	collector, err := observability.NewCollector(prometheus.NewRegistry())
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.Err(err))
		return err
	}
	if addr := v.GetString("metrics-addr"); addr != "" {
		srv := serveMetrics(ctx, addr, collector, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	cat := catalog.New()
	unsubscribe := cat.Subscribe(func(ev catalog.Event) {
		collector.SetCatalogSize(ev.Count)
	})
	defer unsubscribe()

	toolkit := orbit.NewToolkit()
	asm, err := dataset.NewAssembler(cfg, toolkit,
		dataset.WithLogger(log),
		dataset.WithVerifier(toolkit),
	)
	if err != nil {
		log.Error(ctx, "invalid benchmark matrix", logging.Err(err))
		return err
	}

	opts := []dataset.RunnerOption{
		dataset.WithRunnerLogger(log),
		dataset.WithRecorder(collector),
		dataset.WithCatalog(cat),
		dataset.WithWorkers(v.GetInt("workers")),
	}
	if v.GetBool("czml") {
		opts = append(opts, dataset.WithCZML(toolkit))
	}
	runner, err := dataset.NewRunner(asm, dataset.NewWriter(output), opts...)
	if err != nil {
		return err
	}

	summary, runErr := runner.Run(ctx)

	if path := v.GetString("metrics-file"); path != "" {
		if err := collector.WriteTextfile(path); err != nil {
			log.Warn(ctx, "failed to write metrics textfile", logging.String("path", path), logging.Err(err))
		}
	}

	if runErr != nil {
		return fmt.Errorf("%d constellation(s) failed: %w", summary.Failed, runErr)
	}
	return nil
}

func serveMetrics(ctx context.Context, addr string, collector *observability.Collector, log logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn(ctx, "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(ctx, "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
