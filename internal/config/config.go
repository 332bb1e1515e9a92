package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type DB struct {
	URL             string        `env:"DATABASE_URL,required"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"16"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"8"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"1h"`
	ConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"15m"`
}

type HTTP struct {
	Port        string   `env:"PORT" envDefault:"8080"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	RateLimit   float64  `env:"RATE_LIMIT_RPS" envDefault:"20"`
}

type Auth struct {
	JWTSecret     string        `env:"JWT_SECRET,required"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	AdminUsername string        `env:"ADMIN_USER" envDefault:"admin"`
	AdminEmail    string        `env:"ADMIN_EMAIL" envDefault:"admin@club.local"`
	AdminPassword string        `env:"ADMIN_PASS" envDefault:""`
}

type Kafka struct {
	BootstrapServers string `env:"KAFKA_BOOTSTRAP_SERVERS" envDefault:""`
	GateEventsTopic  string `env:"KAFKA_GATE_EVENTS_TOPIC" envDefault:"gate-events"`
}

type Config struct {
	DB       DB
	HTTP     HTTP
	Auth     Auth
	Kafka    Kafka
	SeedData bool `env:"SEED_DATA" envDefault:"false"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
