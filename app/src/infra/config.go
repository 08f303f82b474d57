package infra

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"dfd-gps-service/app/src/infra/utils"
)

type Config struct {
	HTTPPort           string
	GRPCPort           string
	MetricsPort        string
	ServiceName        string
	LogLevel           string
	TroposphereModel   string
	MappingFunction    string
	CORSAllowedOrigins []string
	StaticDir          string
	ShutdownTimeoutMS  int
}

func LoadConfig() Config {
	return Config{
		HTTPPort:           getEnv("HTTP_PORT", "8000"),
		GRPCPort:           lookupEnv("GRPC_PORT", "50051"),
		MetricsPort:        lookupEnv("METRICS_PORT", "2112"),
		ServiceName:        getEnv("SERVICE_NAME", "dfd-gps-service"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		TroposphereModel:   getEnv("TROPO_MODEL", "saastamoinen"),
		MappingFunction:    getEnv("MAPPING_FUNCTION", "simple"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		StaticDir:          os.Getenv("STATIC_DIR"),
		ShutdownTimeoutMS:  getEnvInt("SHUTDOWN_TIMEOUT_MS", 5000),
	}
}

// Validate reports the first setting that cannot be used to start the service.
func (c Config) Validate() error {
	if err := validatePort(c.HTTPPort); err != nil {
		return fmt.Errorf("HTTP_PORT: %w", err)
	}
	optional := []struct{ name, port string }{
		{"GRPC_PORT", c.GRPCPort},
		{"METRICS_PORT", c.MetricsPort},
	}
	for _, o := range optional {
		if o.port == "" {
			continue
		}
		if err := validatePort(o.port); err != nil {
			return fmt.Errorf("%s: %w", o.name, err)
		}
	}
	if c.ShutdownTimeoutMS <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT_MS must be positive, got %d", c.ShutdownTimeoutMS)
	}
	return nil
}

func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}

func LogConfig(ctx context.Context, logger *Logger, cfg Config) {
	logger.Printf(ctx, "HTTP_PORT=%s", cfg.HTTPPort)
	logger.Printf(ctx, "GRPC_PORT=%s", utils.EmptyFallback(cfg.GRPCPort, "(disabled)"))
	logger.Printf(ctx, "METRICS_PORT=%s", utils.EmptyFallback(cfg.MetricsPort, "(disabled)"))
	logger.Printf(ctx, "SERVICE_NAME=%s", cfg.ServiceName)
	logger.Printf(ctx, "LOG_LEVEL=%s", cfg.LogLevel)
	logger.Printf(ctx, "TROPO_MODEL=%s", cfg.TroposphereModel)
	logger.Printf(ctx, "MAPPING_FUNCTION=%s", cfg.MappingFunction)
	logger.Printf(ctx, "CORS_ALLOWED_ORIGINS=%s", utils.EmptyFallback(strings.Join(cfg.CORSAllowedOrigins, ","), "(none)"))
	logger.Printf(ctx, "STATIC_DIR=%s", utils.EmptyFallback(cfg.StaticDir, "(embedded)"))
	logger.Printf(ctx, "SHUTDOWN_TIMEOUT_MS=%d", cfg.ShutdownTimeoutMS)
}

func validatePort(value string) error {
	port, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("invalid port %q", value)
	}
	if port <= 0 || port > 65535 {
		return fmt.Errorf("port %d out of range", port)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// lookupEnv differs from getEnv in that an explicitly empty variable wins.
func lookupEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	var items []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}
