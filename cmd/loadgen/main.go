package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"flight-loadgen/config"
	"flight-loadgen/internal/broker"
	"flight-loadgen/internal/generator"
	"flight-loadgen/internal/loadtest"
	"flight-loadgen/internal/redisclient"
	"flight-loadgen/internal/refdata"
	"flight-loadgen/internal/results"
	"flight-loadgen/internal/sink"
	"flight-loadgen/internal/store"
	"flight-loadgen/internal/util"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	flag.StringVar(&cfg.Sink.Kind, "sink", cfg.Sink.Kind, "event sink: grpc, http or kafka")
	flag.StringVar(&cfg.Data.Source, "source", cfg.Data.Source, "reference data source: csv or postgres")
	flag.StringVar(&cfg.Results.LogPath, "results", cfg.Results.LogPath, "results log path")
	flag.DurationVar(&cfg.Run.InterCallDelay, "delay", cfg.Run.InterCallDelay, "pause between calls of one client")
	flag.DurationVar(&cfg.Run.CallTimeout, "timeout", cfg.Run.CallTimeout, "timeout of one call, 0 disables it")
	flag.Int64Var(&cfg.Run.Seed, "seed", cfg.Run.Seed, "random seed, 0 picks one from the clock")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [num_clients] [events_per_client]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := parseArgs(flag.Args(), &cfg.Run); err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	if err := util.InitLogger(cfg.Server.Env, cfg.Server.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	if err := run(cfg); err != nil {
		util.GetLogger().Error(describe(err), zap.Error(err))
		util.SyncLogger()
		os.Exit(1)
	}
}

func parseArgs(args []string, rc *config.RunConfig) error {
	if len(args) > 2 {
		return fmt.Errorf("too many arguments")
	}
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("num_clients must be a positive integer, got %q", args[0])
		}
		rc.NumClients = n
	}
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 0 {
			return fmt.Errorf("events_per_client must be a non-negative integer, got %q", args[1])
		}
		rc.EventsPerClient = n
	}
	return nil
}

func describe(err error) string {
	var loadErr *refdata.DataLoadError
	var invErr *generator.InsufficientInventoryError
	switch {
	case errors.As(err, &loadErr):
		return "Failed to load reference data"
	case errors.As(err, &invErr):
		return "Not enough free seats for this run"
	case errors.Is(err, results.ErrEmptySampleSet):
		return "Run produced no samples"
	default:
		return "Load test failed"
	}
}

func run(cfg *config.Config) error {
	logger := util.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := util.InitTracer("flight-loadgen", cfg.Observ.JaegerEndpoint)
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}
	if tp != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tp.Shutdown(shutdownCtx)
		}()
	}

	if cfg.Observ.PrometheusPort != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(":"+cfg.Observ.PrometheusPort, mux); err != nil {
				logger.Error("Metrics server stopped", zap.Error(err))
			}
		}()
	}

	var db *store.Store
	if cfg.Database.URL != "" {
		if db, err = store.NewStore(cfg.Database.URL); err != nil {
			return err
		}
		defer db.Close()
	}

	src, err := dataSource(cfg, db)
	if err != nil {
		return err
	}
	ds, err := refdata.NewMemo(src).Dataset(ctx)
	if err != nil {
		return err
	}
	logger.Info("Reference data loaded",
		zap.Int("users", len(ds.UserIDs)),
		zap.Int("seats", len(ds.Seats)),
		zap.Int("available", ds.Available()))

	eventSink, closeSink, err := openSink(cfg)
	if err != nil {
		return err
	}
	defer closeSink()

	if cfg.Run.Seed == 0 {
		cfg.Run.Seed = time.Now().UnixNano()
	}

	var opts []loadtest.Option
	if cfg.Redis.LedgerEnabled {
		rc, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer rc.Close()
		opts = append(opts, loadtest.WithLedger(rc.Ledger(cfg.Redis.LedgerKey)))
	}

	pool := loadtest.NewPool(loadtest.Config{
		NumClients:      cfg.Run.NumClients,
		EventsPerClient: cfg.Run.EventsPerClient,
		InterCallDelay:  cfg.Run.InterCallDelay,
		CallTimeout:     cfg.Run.CallTimeout,
		Seed:            cfg.Run.Seed,
		SinkName:        cfg.Sink.Kind,
	}, ds, newSynthesizer(cfg.Run), eventSink, opts...)

	res, err := pool.Run(ctx)
	if err != nil {
		return err
	}

	stats := results.Summarize(res.Samples)
	fmt.Printf("run %s: %d calls, %d errors (%.1f%%)\n", res.RunID, stats.Count, stats.Errors, stats.ErrorRate*100)
	fmt.Printf("latency min %v  mean %v  p50 %v  p90 %v  p95 %v  p99 %v  max %v\n",
		stats.Min, stats.Mean, stats.P50, stats.P90, stats.P95, stats.P99, stats.Max)

	summary, err := results.Aggregate(cfg.Run.NumClients, res.Samples)
	if err != nil {
		return err
	}

	resultsLog := results.NewLog(cfg.Results.LogPath)
	appenders := results.Appenders{resultsLog}
	if db != nil {
		appenders = append(appenders, results.AppenderFunc(db.AppendRunSummary))
	}
	if err := appenders.Append(context.Background(), res.RunID, summary); err != nil {
		return fmt.Errorf("failed to record run summary: %w", err)
	}

	fmt.Printf("concurrency %d: mean latency %.6fs (appended to %s)\n",
		summary.Concurrency, summary.MeanLatency.Seconds(), resultsLog.Path())
	return nil
}

func newSynthesizer(rc config.RunConfig) *generator.Synthesizer {
	return generator.NewSynthesizer(
		generator.WithFlightPrefix(rc.FlightPrefix),
		generator.WithWindow(rc.ReservationWindow),
	)
}

func dataSource(cfg *config.Config, db *store.Store) (refdata.Source, error) {
	switch cfg.Data.Source {
	case "csv":
		return refdata.CSVSource{UsersPath: cfg.Data.UsersPath, SeatsPath: cfg.Data.SeatsPath}, nil
	case "postgres":
		if db == nil {
			return nil, fmt.Errorf("postgres source requires DATABASE_URL")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Data.Source)
	}
}

func openSink(cfg *config.Config) (sink.EventSink, func(), error) {
	switch cfg.Sink.Kind {
	case "grpc":
		s, err := sink.NewGRPCSink(cfg.Sink.GRPCAddr)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case "http":
		return sink.NewHTTPSink(cfg.Sink.HTTPURL, 0), func() {}, nil
	case "kafka":
		if len(cfg.Kafka.Brokers) == 0 {
			return nil, nil, fmt.Errorf("kafka sink requires KAFKA_BROKERS")
		}
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder)
		return sink.NewKafkaSink(broker.NewEventPublisher(producer)), func() { _ = producer.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown sink %q", cfg.Sink.Kind)
	}
}
