package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flight-loadgen/config"
	"flight-loadgen/internal/api"
	"flight-loadgen/internal/broker"
	"flight-loadgen/internal/service"
	"flight-loadgen/internal/sink"
	"flight-loadgen/internal/store"
	"flight-loadgen/internal/util"
	"flight-loadgen/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env, cfg.Server.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting order event receiver")

	tp, err := util.InitTracer("order-receiver", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	if tp != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				log.Printf("Error shutting down tracer: %v", err)
			}
		}()
	}

	publisher, closePublisher := newPublisher(cfg.Kafka)
	defer closePublisher()
	if publisher == nil {
		logger.Info("KAFKA_BROKERS empty, acknowledging events without publishing")
	} else {
		logger.Info("Kafka producer initialized", zap.String("topic", cfg.Kafka.TopicOrder))
	}

	eventService := service.NewEventService(publisher)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var ingestWorker *worker.IngestWorker
	if cfg.Database.URL != "" && publisher != nil {
		db, err := store.NewStore(cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		logger.Info("Database connected")

		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder, cfg.Kafka.ConsumerGroup)
		ingestWorker = worker.NewIngestWorker(consumer, service.NewIngestor(db).HandleMessage)
		go func() {
			if err := ingestWorker.Start(workerCtx); err != nil && err != context.Canceled {
				logger.Error("Ingest worker error", zap.Error(err))
			}
		}()
	} else {
		logger.Info("Ingest worker disabled, it needs both DATABASE_URL and KAFKA_BROKERS")
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	api.NewHandler(eventService).SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.Server.GRPCPort))
	if err != nil {
		log.Fatalf("Failed to listen on gRPC port: %v", err)
	}
	grpcServer := sink.NewGRPCServer()
	sink.RegisterEventService(grpcServer, eventService)

	go func() {
		logger.Info("Starting gRPC server", zap.String("port", cfg.Server.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatalf("Failed to serve gRPC: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()

	workerCancel()
	if ingestWorker != nil {
		if err := ingestWorker.Stop(); err != nil {
			logger.Error("Failed to stop ingest worker", zap.Error(err))
		}
	}

	logger.Info("Server exited")
}

// newPublisher returns a nil publisher when no brokers are configured
func newPublisher(kc config.KafkaConfig) (service.OrderPublisher, func()) {
	if len(kc.Brokers) == 0 {
		return nil, func() {}
	}
	producer := broker.NewProducer(kc.Brokers, kc.TopicOrder)
	return broker.NewEventPublisher(producer), func() { _ = producer.Close() }
}
