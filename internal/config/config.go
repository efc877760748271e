package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port          string `envconfig:"PORT" default:"8080"`
	JWTSecret     string `envconfig:"JWT_SECRET" default:"dev-secret"`
	DBHost        string `envconfig:"DB_HOST" default:"localhost"`
	DBPort        int    `envconfig:"DB_PORT" default:"5432"`
	DBUser        string `envconfig:"DB_USER" default:"harvest"`
	DBPassword    string `envconfig:"DB_PASSWORD" default:"harvest123"`
	DBName        string `envconfig:"DB_NAME" default:"harvest"`
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RabbitHost    string `envconfig:"RABBIT_HOST" default:"localhost"`
	RabbitPort    int    `envconfig:"RABBIT_PORT" default:"5672"`
	RabbitUser    string `envconfig:"RABBIT_USER" default:"guest"`
	RabbitPass    string `envconfig:"RABBIT_PASS" default:"guest"`
	ConsulHost    string `envconfig:"CONSUL_HOST" default:"localhost"`
	ConsulPort    int    `envconfig:"CONSUL_PORT" default:"8500"`
	DataGovAPIKey string `envconfig:"DATA_GOV_API_KEY" default:""`
	CacheTTL      int    `envconfig:"CACHE_TTL_SECONDS" default:"300"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
