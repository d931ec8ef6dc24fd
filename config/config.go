package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string
	ServerHost  string
	ServerPort  int

	DatabaseDbPath       string
	DatabaseCacheAddress string
	DatabaseCachePort    int

	// Bcrypt hash of the admin API key guarding admin routes.
	AdminKeyHash string

	// Draft persistence tuning.
	DraftRetentionDays int
	DraftMaxSummaries  int

	// Autosave cadence in seconds.
	AutosaveIntervalSeconds int

	// Document generation timeout in seconds.
	DocumentTimeoutSeconds int

	// Completion link lifetime in hours.
	CompletionLinkTTLHours int
}

func InitConfig() (Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetEnvPrefix("server")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("environment", "development")
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.db_path", "data/server.db")
	viper.SetDefault("database.cache_address", "localhost")
	viper.SetDefault("database.cache_port", 6379)
	viper.SetDefault("admin.key_hash", "")
	viper.SetDefault("draft.retention_days", 30)
	viper.SetDefault("draft.max_summaries", 5)
	viper.SetDefault("autosave.interval_seconds", 15)
	viper.SetDefault("document.timeout_seconds", 30)
	viper.SetDefault("completion_link.ttl_hours", 72)

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional, env and defaults cover everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	config := Config{
		Environment:             viper.GetString("environment"),
		ServerHost:              viper.GetString("server.host"),
		ServerPort:              viper.GetInt("server.port"),
		DatabaseDbPath:          viper.GetString("database.db_path"),
		DatabaseCacheAddress:    viper.GetString("database.cache_address"),
		DatabaseCachePort:       viper.GetInt("database.cache_port"),
		AdminKeyHash:            viper.GetString("admin.key_hash"),
		DraftRetentionDays:      viper.GetInt("draft.retention_days"),
		DraftMaxSummaries:       viper.GetInt("draft.max_summaries"),
		AutosaveIntervalSeconds: viper.GetInt("autosave.interval_seconds"),
		DocumentTimeoutSeconds:  viper.GetInt("document.timeout_seconds"),
		CompletionLinkTTLHours:  viper.GetInt("completion_link.ttl_hours"),
	}

	return config, nil
}
