// Package config loads configuration from environment variables and an
// optional .env file.
package config

import (
	"errors"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "MARQUEE"

// Config holds all application settings.
type Config struct {
	ServerAddress  string
	DatabaseURL    string
	MigrationsPath string
	JWTSecret      string

	RedisAddress  string
	RedisUsername string
	RedisPassword string

	LogLevel  string
	LogPretty bool

	UseSpaces       bool
	SpacesEndpoint  string
	SpacesRegion    string
	SpacesBucket    string
	SpacesCDNURL    string
	SpacesAccessKey string
	SpacesSecretKey string
	UploadDir       string
}

// Load reads settings from a .env file (if present), then environment
// variables with the MARQUEE_ prefix, then defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server_address", ":8080")
	v.SetDefault("migrations_path", "./migrations")
	v.SetDefault("redis_address", "localhost:6379")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
	v.SetDefault("upload_dir", "./uploads")

	cfg := &Config{
		ServerAddress:  v.GetString("server_address"),
		DatabaseURL:    v.GetString("database_url"),
		MigrationsPath: v.GetString("migrations_path"),
		JWTSecret:      v.GetString("jwt_secret"),

		RedisAddress:  v.GetString("redis_address"),
		RedisUsername: v.GetString("redis_username"),
		RedisPassword: v.GetString("redis_password"),

		LogLevel:  v.GetString("log_level"),
		LogPretty: v.GetBool("log_pretty"),

		UseSpaces:       v.GetBool("use_spaces"),
		SpacesEndpoint:  v.GetString("spaces_endpoint"),
		SpacesRegion:    v.GetString("spaces_region"),
		SpacesBucket:    v.GetString("spaces_bucket"),
		SpacesCDNURL:    v.GetString("spaces_cdn_url"),
		SpacesAccessKey: v.GetString("spaces_access_key"),
		SpacesSecretKey: v.GetString("spaces_secret_key"),
		UploadDir:       v.GetString("upload_dir"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("MARQUEE_DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("MARQUEE_JWT_SECRET is required")
	}
	return cfg, nil
}
