// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Server, Postgres, Kafka, Redis, Corpus, Selection, Search, etc.).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Selection SelectionConfig `yaml:"selection"`
	Search    SearchConfig    `yaml:"search"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"`
	CORSOrigins     []string      `yaml:"corsOrigins"`
	AdminRateLimit  int           `yaml:"adminRateLimit"` // per client per minute, 0 disables
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings. An empty broker list
// disables index-complete notifications.
type KafkaConfig struct {
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	IndexComplete string `yaml:"indexComplete"`
}

// RedisConfig holds Redis connection and caching parameters. An empty Addr
// disables the query cache.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// Artifact backends.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// CorpusConfig describes where documents come from, where build artifacts
// live, and how text is analyzed.
type CorpusConfig struct {
	DataDir         string `yaml:"dataDir"`
	ArtifactBackend string `yaml:"artifactBackend"`
	ArtifactDir     string `yaml:"artifactDir"`
	SQLitePath      string `yaml:"sqlitePath"`
	DomainStopwords bool   `yaml:"domainStopwords"`
	SmoothIDF       bool   `yaml:"smoothIdf"`
	BuildWorkers    int    `yaml:"buildWorkers"`
	LoadOnStartup   bool   `yaml:"loadOnStartup"`
}

// SelectionConfig controls document-frequency feature selection.
type SelectionConfig struct {
	Enabled    bool    `yaml:"enabled"`
	MinDF      int     `yaml:"minDf"`
	MaxDFRatio float64 `yaml:"maxDfRatio"`
	TopN       int     `yaml:"topN"`
}

// SearchConfig controls query execution limits and summary shapes.
type SearchConfig struct {
	MaxResults      int `yaml:"maxResults"`
	DefaultLimit    int `yaml:"defaultLimit"`
	SummarySentence int `yaml:"summarySentences"`
	SummaryMaxChars int `yaml:"summaryMaxChars"`
	DetailSentences int `yaml:"detailSentences"`
	DetailMaxChars  int `yaml:"detailMaxChars"`
	SnippetWindow   int `yaml:"snippetWindow"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with sensible defaults for any
// missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values the indexing and search pipeline depend on.
func (c *Config) Validate() error {
	switch c.Corpus.ArtifactBackend {
	case BackendFile, BackendPostgres, BackendSQLite:
	default:
		return fmt.Errorf("corpus.artifactBackend: unknown backend %q", c.Corpus.ArtifactBackend)
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.requestTimeout must be positive, got %v", c.Server.RequestTimeout)
	}
	if c.Server.AdminRateLimit < 0 {
		return fmt.Errorf("server.adminRateLimit must be >= 0, got %d", c.Server.AdminRateLimit)
	}
	if c.Selection.MinDF < 1 {
		return fmt.Errorf("selection.minDf must be >= 1, got %d", c.Selection.MinDF)
	}
	if c.Selection.MaxDFRatio <= 0 || c.Selection.MaxDFRatio > 1 {
		return fmt.Errorf("selection.maxDfRatio must be in (0, 1], got %g", c.Selection.MaxDFRatio)
	}
	if c.Selection.TopN < 0 {
		return fmt.Errorf("selection.topN must be >= 0, got %d", c.Selection.TopN)
	}
	if c.Search.DefaultLimit < 1 || c.Search.MaxResults < c.Search.DefaultLimit {
		return fmt.Errorf("search: defaultLimit %d must be in [1, maxResults=%d]",
			c.Search.DefaultLimit, c.Search.MaxResults)
	}
	if c.Search.SummarySentence < 1 || c.Search.DetailSentences < 1 {
		return fmt.Errorf("search: summary sentence counts must be >= 1")
	}
	return nil
}

// defaultConfig returns a Config with production-ready defaults for local
// development.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RequestTimeout:  30 * time.Second,
			AdminRateLimit:  10,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "herbalsearch",
			User:            "herbalsearch",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			ConsumerGroup: "herbalsearch-searcher",
			Topics: KafkaTopics{
				IndexComplete: "index.complete",
			},
		},
		Redis: RedisConfig{
			PoolSize: 10,
			CacheTTL: 60 * time.Second,
		},
		Corpus: CorpusConfig{
			DataDir:         "data/corpus",
			ArtifactBackend: BackendFile,
			ArtifactDir:     "data/artifacts",
			SQLitePath:      "data/artifacts.db",
			DomainStopwords: false,
			SmoothIDF:       true,
			BuildWorkers:    4,
			LoadOnStartup:   true,
		},
		Selection: SelectionConfig{
			Enabled:    true,
			MinDF:      2,
			MaxDFRatio: 0.85,
			TopN:       8000,
		},
		Search: SearchConfig{
			MaxResults:      100,
			DefaultLimit:    10,
			SummarySentence: 2,
			SummaryMaxChars: 320,
			DetailSentences: 3,
			DetailMaxChars:  450,
			SnippetWindow:   260,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads HS_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HS_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("HS_SERVER_CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("HS_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("HS_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("HS_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("HS_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("HS_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("HS_POSTGRES_SSLMODE"); v != "" {
		cfg.Postgres.SSLMode = v
	}
	if v := os.Getenv("HS_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("HS_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("HS_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("HS_CORPUS_DATA_DIR"); v != "" {
		cfg.Corpus.DataDir = v
	}
	if v := os.Getenv("HS_CORPUS_ARTIFACT_BACKEND"); v != "" {
		cfg.Corpus.ArtifactBackend = v
	}
	if v := os.Getenv("HS_CORPUS_ARTIFACT_DIR"); v != "" {
		cfg.Corpus.ArtifactDir = v
	}
	if v := os.Getenv("HS_CORPUS_SQLITE_PATH"); v != "" {
		cfg.Corpus.SQLitePath = v
	}
	if v := os.Getenv("HS_CORPUS_DOMAIN_STOPWORDS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Corpus.DomainStopwords = b
		}
	}
	if v := os.Getenv("HS_SELECTION_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Selection.Enabled = b
		}
	}
	if v := os.Getenv("HS_SELECTION_TOP_N"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Selection.TopN = n
		}
	}
	if v := os.Getenv("HS_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("HS_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
