package config

import (
	"time"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/spf13/viper"
)

const (
	DRIVER_POSTGRES = "postgres"
	DRIVER_SQLITE   = "sqlite"
)

type Config struct {
	GeneralVersion          string `mapstructure:"GENERAL_VERSION"`
	Environment             string `mapstructure:"ENVIRONMENT"`
	ServerPort              int    `mapstructure:"SERVER_PORT"`
	DatabaseDriver          string `mapstructure:"DB_DRIVER"`
	DatabaseHost            string `mapstructure:"DB_HOST"`
	DatabasePort            int    `mapstructure:"DB_PORT"`
	DatabaseName            string `mapstructure:"DB_NAME"`
	DatabaseUser            string `mapstructure:"DB_USER"`
	DatabasePassword        string `mapstructure:"DB_PASSWORD"`
	DatabasePath            string `mapstructure:"DB_PATH"`
	DatabaseConnectRetries  int    `mapstructure:"DB_CONNECT_RETRIES"`
	DatabaseCacheAddress    string `mapstructure:"DB_CACHE_ADDRESS"`
	DatabaseCachePort       int    `mapstructure:"DB_CACHE_PORT"`
	DatabaseCacheReset      int    `mapstructure:"DB_CACHE_RESET"`
	CorsAllowOrigins        string `mapstructure:"CORS_ALLOW_ORIGINS"`
	JWTSecret               string `mapstructure:"JWT_SECRET"`
	AccessTokenTTLMinutes   int    `mapstructure:"ACCESS_TOKEN_TTL_MINUTES"`
	RefreshTokenTTLHours    int    `mapstructure:"REFRESH_TOKEN_TTL_HOURS"`
	PasswordResetTTLMinutes int    `mapstructure:"PASSWORD_RESET_TTL_MINUTES"`
	SchedulerEnabled        bool   `mapstructure:"SCHEDULER_ENABLED"`
	StatsCacheTTLSeconds    int    `mapstructure:"STATS_CACHE_TTL_SECONDS"`
}

var ConfigInstance Config

var envVars = []string{
	"GENERAL_VERSION", "ENVIRONMENT", "SERVER_PORT",
	"DB_DRIVER", "DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD", "DB_PATH",
	"DB_CONNECT_RETRIES",
	"DB_CACHE_ADDRESS", "DB_CACHE_PORT", "DB_CACHE_RESET",
	"CORS_ALLOW_ORIGINS",
	"JWT_SECRET", "ACCESS_TOKEN_TTL_MINUTES", "REFRESH_TOKEN_TTL_HOURS", "PASSWORD_RESET_TTL_MINUTES",
	"SCHEDULER_ENABLED", "STATS_CACHE_TTL_SECONDS",
}

func New() (Config, error) {
	log := logger.New("config").Function("New")
	log.Info("Initializing config")

	viper.AutomaticEnv()
	setDefaults()

	for _, env := range envVars {
		if err := viper.BindEnv(env); err != nil {
			log.Warn("Failed to bind environment variable", "env", env, "error", err)
		}
	}

	envVarsSet := viper.IsSet("SERVER_PORT") && viper.IsSet("JWT_SECRET")

	if envVarsSet {
		log.Info("Environment variables detected, skipping file loading")
	} else {
		log.Info("Environment variables not found, attempting to load from files")

		viper.SetConfigFile(".env")
		viper.SetConfigType("env")

		if err := viper.ReadInConfig(); err != nil {
			log.Warn("Could not find .env file", "error", err)
		} else {
			log.Info("Loaded .env file")
		}

		viper.SetConfigFile(".env.local")
		if err := viper.MergeInConfig(); err != nil {
			log.Debug("No .env.local file found", "error", err)
		} else {
			log.Info("Loaded .env.local overrides")
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, log.Err("Fatal error: could not unmarshal config", err)
	}

	if err := validateConfig(config, log); err != nil {
		return Config{}, err
	}

	log.Info(
		"Successfully initialized config",
		"environment", config.Environment,
		"driver", config.DatabaseDriver,
		"port", config.ServerPort,
	)
	return ConfigInstance, nil
}

func setDefaults() {
	viper.SetDefault("ENVIRONMENT", "production")
	viper.SetDefault("DB_DRIVER", DRIVER_POSTGRES)
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_PATH", "riego.db")
	viper.SetDefault("DB_CONNECT_RETRIES", 5)
	viper.SetDefault("DB_CACHE_RESET", -1)
	viper.SetDefault("CORS_ALLOW_ORIGINS", "*")
	viper.SetDefault("ACCESS_TOKEN_TTL_MINUTES", 60)
	viper.SetDefault("REFRESH_TOKEN_TTL_HOURS", 24)
	viper.SetDefault("PASSWORD_RESET_TTL_MINUTES", 60)
	viper.SetDefault("SCHEDULER_ENABLED", true)
	viper.SetDefault("STATS_CACHE_TTL_SECONDS", 60)
}

func GetConfig() Config {
	return ConfigInstance
}

func (c Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMinutes) * time.Minute
}

func (c Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenTTLHours) * time.Hour
}

func (c Config) PasswordResetTTL() time.Duration {
	return time.Duration(c.PasswordResetTTLMinutes) * time.Minute
}

func (c Config) StatsCacheTTL() time.Duration {
	return time.Duration(c.StatsCacheTTLSeconds) * time.Second
}

func (c Config) CacheEnabled() bool {
	return c.DatabaseCacheAddress != "" && c.DatabaseCachePort != 0
}

func validateConfig(config Config, log logger.Logger) error {
	if config.ServerPort <= 0 {
		return log.Error(
			"Fatal error: invalid server port",
			"port", config.ServerPort,
		)
	}

	switch config.DatabaseDriver {
	case DRIVER_POSTGRES:
		if config.DatabaseHost == "" || config.DatabaseName == "" || config.DatabaseUser == "" {
			return log.ErrMsg("Fatal error: DB_HOST, DB_NAME and DB_USER are required for postgres")
		}
	case DRIVER_SQLITE:
		if config.DatabasePath == "" {
			return log.ErrMsg("Fatal error: DB_PATH is required for sqlite")
		}
	default:
		return log.Error("Fatal error: unsupported database driver", "driver", config.DatabaseDriver)
	}

	if config.JWTSecret == "" {
		return log.ErrMsg("Fatal error: JWT_SECRET is required")
	}

	if config.AccessTokenTTLMinutes <= 0 || config.RefreshTokenTTLHours <= 0 ||
		config.PasswordResetTTLMinutes <= 0 {
		return log.ErrMsg("Fatal error: token lifetimes must be positive")
	}

	ConfigInstance = config
	return nil
}
