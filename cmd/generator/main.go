package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	"flight-loadgen/config"
	"flight-loadgen/internal/broker"
	"flight-loadgen/internal/generator"
	"flight-loadgen/internal/refdata"
	"flight-loadgen/internal/sink"
	"flight-loadgen/internal/util"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	count := flag.Int("count", 100, "number of orders to generate")
	seed := flag.Int64("seed", 42, "random seed")
	out := flag.String("out", "orders.json", "output file")
	publish := flag.Bool("publish", false, "also publish every order to Kafka")
	flag.Parse()

	if err := util.InitLogger(cfg.Server.Env, cfg.Server.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()
	logger := util.GetLogger()

	ctx := context.Background()

	ds, err := refdata.Load(ctx, refdata.CSVSource{UsersPath: cfg.Data.UsersPath, SeatsPath: cfg.Data.SeatsPath})
	if err != nil {
		logger.Fatal("Failed to load reference data", zap.Error(err))
	}

	rng := rand.New(rand.NewSource(*seed))
	orders, err := generator.GenerateOrders(ds, *count, generator.NewSynthesizer(
		generator.WithFlightPrefix(cfg.Run.FlightPrefix),
		generator.WithWindow(cfg.Run.ReservationWindow),
	), rng)
	if err != nil {
		logger.Fatal("Failed to generate orders", zap.Error(err))
	}

	data, err := json.MarshalIndent(orders, "", "  ")
	if err != nil {
		logger.Fatal("Failed to encode orders", zap.Error(err))
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		logger.Fatal("Failed to write orders", zap.Error(err))
	}
	fmt.Printf("%d orders written to %s\n", len(orders), *out)

	if !*publish {
		return
	}

	if len(cfg.Kafka.Brokers) == 0 {
		logger.Fatal("Publishing requires KAFKA_BROKERS")
	}
	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder)
	defer producer.Close()
	kafkaSink := sink.NewKafkaSink(broker.NewEventPublisher(producer))

	for _, order := range orders {
		if _, err := kafkaSink.Send(ctx, order); err != nil {
			logger.Error("Failed to publish order",
				zap.String("flight_id", order.FlightID),
				zap.String("seat", order.SeatCode),
				zap.Error(err))
		}
	}
	logger.Info("Orders published", zap.String("topic", cfg.Kafka.TopicOrder), zap.Int("count", len(orders)))
}
