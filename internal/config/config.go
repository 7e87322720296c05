package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Data       DataConfig       `mapstructure:"data"`
	Training   TrainingConfig   `mapstructure:"training"`
	Forecast   ForecastConfig   `mapstructure:"forecast"`
	ModelStore ModelStoreConfig `mapstructure:"model_store"`
	Output     OutputConfig     `mapstructure:"output"`
	Viewer     ViewerConfig     `mapstructure:"viewer"`
	Etcd       EtcdConfig       `mapstructure:"etcd"`
	Queue      QueueConfig      `mapstructure:"queue"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// DataConfig locates the tables produced and consumed by the preparation steps
type DataConfig struct {
	LongPath         string  `mapstructure:"long_path"`         // Long table the trainer reads
	ResourcesDir     string  `mapstructure:"resources_dir"`     // Directory of raw indicator CSVs
	WidePath         string  `mapstructure:"wide_path"`         // Combined wide table
	CleanedPath      string  `mapstructure:"cleaned_path"`      // Wide table without the units line
	FinalPath        string  `mapstructure:"final_path"`        // Imputed wide table
	MissingThreshold float64 `mapstructure:"missing_threshold"` // Drop columns missing more than this share
	SkipSecondLine   bool    `mapstructure:"skip_second_line"`
}

// TrainingConfig selects the series and split
type TrainingConfig struct {
	Indicator string `mapstructure:"indicator"`
	Holdout   int    `mapstructure:"holdout"`
	Alternate string `mapstructure:"alternate"` // Optional comparison model, e.g. "changepoint"
}

// ForecastConfig controls the projection after training
type ForecastConfig struct {
	Horizon    int     `mapstructure:"horizon"`
	Confidence float64 `mapstructure:"confidence"` // Two-sided interval level in (0, 1)
}

// ModelStoreConfig selects where fitted models are persisted
type ModelStoreConfig struct {
	Type    string `mapstructure:"type"`     // file (default) or etcd
	Path    string `mapstructure:"path"`     // File store destination
	EtcdKey string `mapstructure:"etcd_key"` // Model name under the etcd prefix
}

// OutputConfig names the artifacts written next to the model
type OutputConfig struct {
	Dir            string `mapstructure:"dir"`
	PlotFile       string `mapstructure:"plot_file"`
	IndicatorsFile string `mapstructure:"indicators_file"`
}

// ViewerConfig represents the HTTP viewer configuration
type ViewerConfig struct {
	Host        string `mapstructure:"host"`
	HTTPPort    int    `mapstructure:"http_port"`
	MinYear     int    `mapstructure:"min_year"`
	MaxYear     int    `mapstructure:"max_year"`
	DefaultYear int    `mapstructure:"default_year"`

	// Optional API key authentication on /v1
	AuthEnabled bool     `mapstructure:"auth_enabled"`
	APIKeys     []string `mapstructure:"api_keys"`
}

// EtcdConfig represents etcd configuration
type EtcdConfig struct {
	Endpoints   []string      `mapstructure:"endpoints"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
}

// QueueConfig represents message queue configuration
type QueueConfig struct {
	Type     string `mapstructure:"type"`     // Queue type: memory (default), nats, redis, kafka
	URL      string `mapstructure:"url"`      // Queue server URL (e.g., nats://localhost:4222, redis://localhost:6379)
	Username string `mapstructure:"username"` // Optional authentication
	Password string `mapstructure:"password"` // Optional authentication

	// Redis-specific options
	RedisDB       int    `mapstructure:"redis_db"`       // Redis database number (default: 0)
	RedisStream   string `mapstructure:"redis_stream"`   // Redis stream prefix (default: "trendcast")
	RedisGroup    string `mapstructure:"redis_group"`    // Redis consumer group (default: "trendcast-group")
	RedisConsumer string `mapstructure:"redis_consumer"` // Redis consumer name (default: hostname)

	// Kafka-specific options
	KafkaBrokers []string `mapstructure:"kafka_brokers"`  // Kafka broker addresses
	KafkaGroupID string   `mapstructure:"kafka_group_id"` // Kafka consumer group ID
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, UnixMs, etc
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Data.Validate(); err != nil {
		return fmt.Errorf("data config: %w", err)
	}

	if err := c.Training.Validate(); err != nil {
		return fmt.Errorf("training config: %w", err)
	}

	if err := c.Forecast.Validate(); err != nil {
		return fmt.Errorf("forecast config: %w", err)
	}

	if err := c.ModelStore.Validate(); err != nil {
		return fmt.Errorf("model_store config: %w", err)
	}

	if c.ModelStore.Type == "etcd" {
		if err := c.Etcd.Validate(); err != nil {
			return fmt.Errorf("etcd config: %w", err)
		}
	}

	if err := c.Viewer.Validate(); err != nil {
		return fmt.Errorf("viewer config: %w", err)
	}

	if err := c.Queue.Validate(); err != nil {
		return fmt.Errorf("queue config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates data configuration
func (c *DataConfig) Validate() error {
	if c.LongPath == "" {
		return fmt.Errorf("data.long_path is required")
	}

	if c.MissingThreshold < 0 || c.MissingThreshold > 1 {
		return fmt.Errorf("data.missing_threshold must be within [0, 1]")
	}

	return nil
}

// Validate validates training configuration
func (c *TrainingConfig) Validate() error {
	if c.Indicator == "" {
		return fmt.Errorf("training.indicator is required")
	}

	if c.Holdout < 0 {
		return fmt.Errorf("training.holdout cannot be negative")
	}

	return nil
}

// Validate validates forecast configuration
func (c *ForecastConfig) Validate() error {
	if c.Horizon < 0 {
		return fmt.Errorf("forecast.horizon cannot be negative")
	}

	if c.Confidence <= 0 || c.Confidence >= 1 {
		return fmt.Errorf("forecast.confidence must be within (0, 1)")
	}

	return nil
}

// Validate validates model store configuration
func (c *ModelStoreConfig) Validate() error {
	switch c.Type {
	case "file":
		if c.Path == "" {
			return fmt.Errorf("model_store.path is required for the file store")
		}
	case "etcd":
		if c.EtcdKey == "" {
			return fmt.Errorf("model_store.etcd_key is required for the etcd store")
		}
	default:
		return fmt.Errorf("model_store.type must be 'file' or 'etcd'")
	}

	return nil
}

// Validate validates viewer configuration
func (c *ViewerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}

	if c.MinYear > c.MaxYear {
		return fmt.Errorf("viewer.min_year cannot exceed viewer.max_year")
	}

	if c.DefaultYear < c.MinYear || c.DefaultYear > c.MaxYear {
		return fmt.Errorf("viewer.default_year must be within [%d, %d]", c.MinYear, c.MaxYear)
	}

	if c.AuthEnabled && len(c.APIKeys) == 0 {
		return fmt.Errorf("viewer.api_keys is required when viewer.auth_enabled is set")
	}

	return nil
}

// Validate validates etcd configuration
func (c *EtcdConfig) Validate() error {
	if len(c.Endpoints) == 0 {
		return fmt.Errorf("etcd.endpoints is required")
	}

	if c.DialTimeout <= 0 {
		return fmt.Errorf("etcd.dial_timeout must be positive")
	}

	return nil
}

// Validate validates queue configuration
func (c *QueueConfig) Validate() error {
	validTypes := map[string]bool{
		"":       true,
		"memory": true,
		"nats":   true,
		"redis":  true,
		"kafka":  true,
	}

	if !validTypes[c.Type] {
		return fmt.Errorf("queue.type must be one of: memory, nats, redis, kafka")
	}

	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}
