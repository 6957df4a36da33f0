package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_WithDefaults(t *testing.T) {
	// Clear any existing env vars that might interfere
	envVars := []string{
		"APP_NAME", "APP_ENVIRONMENT", "APP_DEBUG",
		"SERVER_HOST", "SERVER_PORT",
		"DATABASE_HOST", "DATABASE_PORT", "DATABASE_USER", "DATABASE_PASSWORD", "DATABASE_DBNAME",
		"REDIS_HOST", "REDIS_PORT",
		"KAFKA_BROKERS", "KAFKA_PUBLISH_TIMEOUT",
		"JWT_SECRET", "INTERNAL_API_KEY",
		"WORKER_ENABLED", "WORKER_SCAN_INTERVAL",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.App.Name != "visitor-pass-service" {
		t.Errorf("App.Name = %q, want %q", cfg.App.Name, "visitor-pass-service")
	}

	if cfg.App.Environment != "development" {
		t.Errorf("App.Environment = %q, want %q", cfg.App.Environment, "development")
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}

	if cfg.Database.Port != 5432 {
		t.Errorf("Database.Port = %d, want %d", cfg.Database.Port, 5432)
	}

	if cfg.Redis.Port != 6379 {
		t.Errorf("Redis.Port = %d, want %d", cfg.Redis.Port, 6379)
	}

	if len(cfg.Kafka.Brokers) != 1 || cfg.Kafka.Brokers[0] != "localhost:9092" {
		t.Errorf("Kafka.Brokers = %v, want [localhost:9092]", cfg.Kafka.Brokers)
	}

	if cfg.Kafka.PublishTimeout != 3*time.Second {
		t.Errorf("Kafka.PublishTimeout = %v, want %v", cfg.Kafka.PublishTimeout, 3*time.Second)
	}

	if cfg.Worker.ScanInterval != 24*time.Hour {
		t.Errorf("Worker.ScanInterval = %v, want %v", cfg.Worker.ScanInterval, 24*time.Hour)
	}
}

func TestLoad_WithEnvOverride(t *testing.T) {
	os.Setenv("APP_NAME", "test-app")
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("DATABASE_HOST", "db.example.com")
	os.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	os.Setenv("WORKER_SCAN_INTERVAL", "1h")
	defer func() {
		os.Unsetenv("APP_NAME")
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("DATABASE_HOST")
		os.Unsetenv("KAFKA_BROKERS")
		os.Unsetenv("WORKER_SCAN_INTERVAL")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.App.Name != "test-app" {
		t.Errorf("App.Name = %q, want %q", cfg.App.Name, "test-app")
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}

	if cfg.Database.Host != "db.example.com" {
		t.Errorf("Database.Host = %q, want %q", cfg.Database.Host, "db.example.com")
	}

	if len(cfg.Kafka.Brokers) != 2 {
		t.Errorf("Kafka.Brokers = %v, want 2 brokers", cfg.Kafka.Brokers)
	}

	if cfg.Worker.ScanInterval != time.Hour {
		t.Errorf("Worker.ScanInterval = %v, want %v", cfg.Worker.ScanInterval, time.Hour)
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := &DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()
	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"

	if dsn != expected {
		t.Errorf("DSN mismatch:\nExpected: %s\nGot: %s", expected, dsn)
	}
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := &RedisConfig{Host: "redis.example.com", Port: 6380}
	if addr := cfg.Addr(); addr != "redis.example.com:6380" {
		t.Errorf("Addr() = %q, want %q", addr, "redis.example.com:6380")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"missing app name", func(c *Config) { c.App.Name = "" }, true},
		{"invalid port", func(c *Config) { c.Server.Port = 0 }, true},
		{"missing db host", func(c *Config) { c.Database.Host = "" }, true},
		{"missing jwt secret", func(c *Config) { c.JWT.Secret = "" }, true},
		{"default jwt secret in production", func(c *Config) {
			c.App.Environment = "production"
			c.InternalAPI.Key = "real-internal-key"
		}, true},
		{"default internal key in production", func(c *Config) {
			c.App.Environment = "production"
			c.JWT.Secret = "real-secret"
		}, true},
		{"zero scan interval with worker enabled", func(c *Config) { c.Worker.ScanInterval = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.App.Name = "visitor-pass-service"
			cfg.App.Environment = "development"
			cfg.Server.Port = 8080
			cfg.Database.Host = "localhost"
			cfg.Database.DBName = "visitor_pass"
			cfg.JWT.Secret = "your-secret-key-change-in-production"
			cfg.InternalAPI.Key = "internal-api-key-change-in-production"
			cfg.Worker.Enabled = true
			cfg.Worker.ScanInterval = 24 * time.Hour

			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
