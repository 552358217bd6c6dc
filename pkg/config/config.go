package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Corpus  CorpusConfig  `mapstructure:"corpus"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

type CorpusConfig struct {
	// Source selects where messages come from: remote, postgres or static.
	Source          string         `mapstructure:"source"`
	APIURL          string         `mapstructure:"api_url"`
	PageSize        int            `mapstructure:"page_size"`
	FetchTimeout    time.Duration  `mapstructure:"fetch_timeout"`
	CacheTTL        time.Duration  `mapstructure:"cache_ttl"`
	RefreshInterval time.Duration  `mapstructure:"refresh_interval"`
	Database        DatabaseConfig `mapstructure:"database"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type EngineConfig struct {
	MinRelevance float64 `mapstructure:"min_relevance"`
}

type LoggingConfig struct {
	Directory  string `mapstructure:"directory"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

func parseDatabaseURL(dbURL string) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}

	password, _ := u.User.Password()
	port := 5432 // default PostgreSQL port
	if u.Port() != "" {
		fmt.Sscanf(u.Port(), "%d", &port)
	}

	dbName := strings.TrimPrefix(u.Path, "/")

	return DatabaseConfig{
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   dbName,
		SSLMode:  "disable",
	}, nil
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("corpus.source", "remote")
	v.SetDefault("corpus.page_size", 100)
	v.SetDefault("corpus.fetch_timeout", "15s")
	v.SetDefault("corpus.cache_ttl", "5m")
	v.SetDefault("corpus.refresh_interval", "5m")
	v.SetDefault("corpus.database.host", "localhost")
	v.SetDefault("corpus.database.port", 5432)
	v.SetDefault("corpus.database.user", "postgres")
	v.SetDefault("corpus.database.sslmode", "disable")
	v.SetDefault("engine.min_relevance", 0.1)
	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)

	// Enable environment variable support
	v.AutomaticEnv()

	// Read the config file when one is given; env and defaults are
	// enough to run without one.
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Check for DATABASE_URL environment variable
	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		dbConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %v", err)
		}
		config.Corpus.Database = dbConfig
	}

	// Get other environment variables
	if apiURL := v.GetString("CORPUS_API_URL"); apiURL != "" {
		config.Corpus.APIURL = apiURL
	}

	if port := v.GetInt("PORT"); port != 0 {
		config.Server.Port = port
	}

	return &config, nil
}
