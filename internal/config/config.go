package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort uint16 `env:"REDIS_PORT" envDefault:"6379"   validate:"min=1000,max=65535"`

	PostgresHost     string `env:"POSTGRES_HOST"     envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT"     envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER"     envDefault:"fleet_user"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"fleet_password"`
	PostgresDb       string `env:"POSTGRES_DB"       envDefault:"fleet_db"`

	// StoreDriver selects the record store; "memory" is for local development.
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres" validate:"oneof=postgres memory"`

	// Policy constants of the disposal workflow. The defaults are the fleet
	// policy floor; both are per-deployment knobs.
	BidMinIncrement        float64 `env:"BID_MIN_INCREMENT"         envDefault:"1000" validate:"min=0"`
	AuctionMinDurationDays int     `env:"AUCTION_MIN_DURATION_DAYS" envDefault:"7"    validate:"min=1"`

	HttpServerPort uint16 `env:"HTTP_SERVER_PORT" envDefault:"8085" validate:"min=1000,max=65535"`
}

func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	err := godotenv.Load(".env")
	if err != nil {
		zap.L().Debug(".env file not found", zap.Error(err))
	}

	cfg := &Config{}
	// Parse config from environment variables
	if err = env.Parse(cfg); err != nil {
		zap.L().Error("config_load_failed", zap.Error(err))
		return nil, err
	}

	// Validate the config
	validate := validator.New()
	err = validate.Struct(cfg)
	if err != nil {
		zap.L().Error("config_validation_failed", zap.Error(err))
		return nil, err
	}
	return cfg, nil
}
