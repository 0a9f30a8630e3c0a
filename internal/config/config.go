package config

import (
	"strings"
	"time"
)

type PostgresConfig struct {
	DSN             string        `env:"PG_DSN"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS" default:"16"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS" default:"8"`
	ConnMaxIdleTime time.Duration `env:"PG_CONN_MAX_IDLE_TIME" default:"5m"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" default:"30m"`
}

type KafkaConfig struct {
	Brokers      string        `env:"KAFKA_BROKERS"`
	WriteTimeout time.Duration `env:"KAFKA_WRITE_TIMEOUT" default:"10s"`
}

// BrokerList splits the comma-separated KAFKA_BROKERS value.
func (k KafkaConfig) BrokerList() []string {
	parts := strings.Split(k.Brokers, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}
