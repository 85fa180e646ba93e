package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config описывает настройки запуска сервиса резервирования.
type Config struct {
	GRPCAddr    string
	MetricsAddr string

	// PostgresDSN пустой — сервис работает на in-memory хранилище.
	PostgresDSN  string
	KafkaBrokers []string

	SweepInterval  time.Duration
	SweepBatchSize int

	ReservationTTL       time.Duration
	QuantityLimitPerItem int32
	RemovalBatchLimit    int
}

// DefaultConfig возвращает базовые настройки сервиса.
func DefaultConfig() Config {
	return Config{
		GRPCAddr:             ":50051",
		MetricsAddr:          ":9090",
		SweepInterval:        time.Minute,
		SweepBatchSize:       500,
		ReservationTTL:       10 * time.Minute,
		QuantityLimitPerItem: 50,
		RemovalBatchLimit:    50,
	}
}

// ReadConfig собирает конфигурацию из переменных окружения поверх дефолтов.
func ReadConfig() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("RESERVE_GRPC_ADDR"); v != "" {
		cfg.GRPCAddr = v
	}
	if v := os.Getenv("RESERVE_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("RESERVE_POSTGRES_DSN")); v != "" {
		cfg.PostgresDSN = v
	}
	if v := strings.TrimSpace(os.Getenv("RESERVE_KAFKA_BROKERS")); v != "" {
		cfg.KafkaBrokers = splitBrokers(v)
	}
	if d, ok := readDuration("RESERVE_SWEEP_INTERVAL"); ok {
		cfg.SweepInterval = d
	}
	if n, ok := readInt("RESERVE_SWEEP_BATCH_SIZE"); ok {
		cfg.SweepBatchSize = n
	}
	if d, ok := readDuration("RESERVE_TTL"); ok {
		cfg.ReservationTTL = d
	}
	if n, ok := readInt("RESERVE_QUANTITY_LIMIT"); ok {
		cfg.QuantityLimitPerItem = int32(n)
	}
	if n, ok := readInt("RESERVE_REMOVAL_BATCH_LIMIT"); ok {
		cfg.RemovalBatchLimit = n
	}
	return cfg
}

func splitBrokers(raw string) []string {
	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

func readDuration(name string) (time.Duration, bool) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return 0, false
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

func readInt(name string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
