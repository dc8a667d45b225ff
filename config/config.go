package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Run      RunConfig
	Data     DataConfig
	Sink     SinkConfig
	Results  ResultsConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Observ   ObservabilityConfig
}

type RunConfig struct {
	NumClients        int
	EventsPerClient   int
	InterCallDelay    time.Duration
	CallTimeout       time.Duration
	// Seed is zero when no seed was configured
	Seed              int64
	FlightPrefix      string
	ReservationWindow time.Duration
}

type DataConfig struct {
	Source    string // "csv" or "postgres"
	UsersPath string
	SeatsPath string
}

type SinkConfig struct {
	Kind     string // "grpc", "http" or "kafka"
	HTTPURL  string
	GRPCAddr string
}

type ResultsConfig struct {
	LogPath string
}

type ServerConfig struct {
	Port     string
	GRPCPort string
	Env      string
	LogLevel string
}

type DatabaseConfig struct {
	URL string
}

type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	LedgerEnabled bool
	LedgerKey     string
}

type KafkaConfig struct {
	// Brokers is empty when KAFKA_BROKERS is set to an empty value
	Brokers       []string
	TopicOrder    string
	ConsumerGroup string
}

type ObservabilityConfig struct {
	JaegerEndpoint string
	PrometheusPort string
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Run: RunConfig{
			NumClients:        getEnvInt("LOADGEN_CLIENTS", 1),
			EventsPerClient:   getEnvInt("LOADGEN_EVENTS_PER_CLIENT", 5),
			InterCallDelay:    getEnvMillis("LOADGEN_DELAY_MS", 1000),
			CallTimeout:       getEnvMillis("LOADGEN_CALL_TIMEOUT_MS", 10000),
			Seed:              int64(getEnvInt("LOADGEN_SEED", 0)),
			FlightPrefix:      getEnv("FLIGHT_PREFIX", "AAA-"),
			ReservationWindow: time.Duration(getEnvInt("RESERVATION_WINDOW_DAYS", 600)) * 24 * time.Hour,
		},
		Data: DataConfig{
			Source:    getEnv("DATA_SOURCE", "csv"),
			UsersPath: getEnv("USERS_CSV", "generator/users.csv"),
			SeatsPath: getEnv("SEATS_CSV", "generator/flights_seats.csv"),
		},
		Sink: SinkConfig{
			Kind:     getEnv("SINK", "grpc"),
			HTTPURL:  getEnv("SINK_HTTP_URL", "http://localhost:8080/api/v1/events"),
			GRPCAddr: getEnv("SINK_GRPC_ADDR", "localhost:50051"),
		},
		Results: ResultsConfig{
			LogPath: getEnv("RESULTS_LOG", "results.csv"),
		},
		Server: ServerConfig{
			Port:     getEnv("PORT", "8080"),
			GRPCPort: getEnv("GRPC_PORT", "50051"),
			Env:      getEnv("ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", ""),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			Addr:          getEnv("REDIS_ADDR", "localhost:6379"),
			Password:      getEnv("REDIS_PASSWORD", ""),
			DB:            getEnvInt("REDIS_DB", 0),
			LedgerEnabled: getEnvBool("SEAT_LEDGER_ENABLED", false),
			LedgerKey:     getEnv("SEAT_LEDGER_KEY", "ledger:seats"),
		},
		Kafka: KafkaConfig{
			Brokers:       getEnvList("KAFKA_BROKERS", "localhost:9092"),
			TopicOrder:    getEnv("KAFKA_TOPIC_ORDER_EVENTS", "order-events"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "order-ingest-group"),
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", ""),
			PrometheusPort: getEnv("PROMETHEUS_PORT", ""),
		},
	}

	log.Printf("Config loaded: env=%s, sink=%s, source=%s", cfg.Server.Env, cfg.Sink.Kind, cfg.Data.Source)
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	n, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultVal)))
	if err != nil {
		log.Printf("Invalid int for %s, using %d", key, defaultVal)
		return defaultVal
	}
	return n
}

func getEnvBool(key string, defaultVal bool) bool {
	b, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(defaultVal)))
	if err != nil {
		return defaultVal
	}
	return b
}

// getEnvList splits a comma separated value. Unlike getEnv, a variable set
// to the empty string yields an empty list rather than the default.
func getEnvList(key, defaultVal string) []string {
	val, ok := os.LookupEnv(key)
	if !ok {
		val = defaultVal
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvMillis(key string, defaultMs int) time.Duration {
	return time.Duration(getEnvInt(key, defaultMs)) * time.Millisecond
}
