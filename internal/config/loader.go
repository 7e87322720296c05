package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/soltixdb/trendcast/internal/utils"
)

// Default values shared by setDefaults and DefaultConfig
const (
	DefaultIndicator  = "Electric power consumption (kWh per capita)"
	DefaultLongPath   = "data/processed_energy_data_long.csv"
	DefaultModelPath  = "output/linear_regression_model.json"
	DefaultOutputDir  = "output"
	DefaultPlotFile   = "custom_forecast_plot.png"
	DefaultIndicators = "INDICATORS.md"
)

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")              // Current directory
		v.AddConfigPath("./configs")      // Project configs directory
		v.AddConfigPath("./config")       // Alternative config directory
		v.AddConfigPath("/etc/trendcast") // System-wide config
	}

	// Set defaults
	setDefaults(v)

	// Enable environment variable overrides, e.g. TRENDCAST_TRAINING_INDICATOR
	v.SetEnvPrefix("TRENDCAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; use defaults
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Data defaults
	v.SetDefault("data.long_path", DefaultLongPath)
	v.SetDefault("data.resources_dir", "resources")
	v.SetDefault("data.wide_path", "data/processed_energy_data.csv")
	v.SetDefault("data.cleaned_path", "data/processed_energy_data_cleaned.csv")
	v.SetDefault("data.final_path", "data/processed_energy_data_final.csv")
	v.SetDefault("data.missing_threshold", 0.5)
	v.SetDefault("data.skip_second_line", false)

	// Training defaults
	v.SetDefault("training.indicator", DefaultIndicator)
	v.SetDefault("training.holdout", 5)
	v.SetDefault("training.alternate", "")

	// Forecast defaults
	v.SetDefault("forecast.horizon", 10)
	v.SetDefault("forecast.confidence", 0.95)

	// Model store defaults
	v.SetDefault("model_store.type", "file")
	v.SetDefault("model_store.path", DefaultModelPath)
	v.SetDefault("model_store.etcd_key", "linear_regression_model")

	// Output defaults
	v.SetDefault("output.dir", DefaultOutputDir)
	v.SetDefault("output.plot_file", DefaultPlotFile)
	v.SetDefault("output.indicators_file", DefaultIndicators)

	// Viewer defaults
	v.SetDefault("viewer.host", "0.0.0.0")
	v.SetDefault("viewer.http_port", 8501)
	v.SetDefault("viewer.min_year", utils.MinPredictYear)
	v.SetDefault("viewer.max_year", utils.MaxPredictYear)
	v.SetDefault("viewer.default_year", utils.ExampleYear)
	v.SetDefault("viewer.auth_enabled", false)

	// Etcd defaults
	v.SetDefault("etcd.endpoints", []string{"http://localhost:2379"})
	v.SetDefault("etcd.dial_timeout", "5s")

	// Queue defaults
	v.SetDefault("queue.type", "memory")
	v.SetDefault("queue.url", "nats://localhost:4222")
	v.SetDefault("queue.redis_stream", "trendcast")
	v.SetDefault("queue.redis_group", "trendcast-group")
	v.SetDefault("queue.kafka_group_id", "trendcast-viewer")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output_path", "stdout")
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configuration from file or returns default config
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		// Return default configuration
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			LongPath:         DefaultLongPath,
			ResourcesDir:     "resources",
			WidePath:         "data/processed_energy_data.csv",
			CleanedPath:      "data/processed_energy_data_cleaned.csv",
			FinalPath:        "data/processed_energy_data_final.csv",
			MissingThreshold: 0.5,
			SkipSecondLine:   false,
		},
		Training: TrainingConfig{
			Indicator: DefaultIndicator,
			Holdout:   5,
		},
		Forecast: ForecastConfig{
			Horizon:    10,
			Confidence: 0.95,
		},
		ModelStore: ModelStoreConfig{
			Type:    "file",
			Path:    DefaultModelPath,
			EtcdKey: "linear_regression_model",
		},
		Output: OutputConfig{
			Dir:            DefaultOutputDir,
			PlotFile:       DefaultPlotFile,
			IndicatorsFile: DefaultIndicators,
		},
		Viewer: ViewerConfig{
			Host:        "0.0.0.0",
			HTTPPort:    8501,
			MinYear:     utils.MinPredictYear,
			MaxYear:     utils.MaxPredictYear,
			DefaultYear: utils.ExampleYear,
		},
		Etcd: EtcdConfig{
			Endpoints:   []string{"http://localhost:2379"},
			DialTimeout: 5 * time.Second,
		},
		Queue: QueueConfig{
			Type:         "memory",
			URL:          "nats://localhost:4222",
			RedisStream:  "trendcast",
			RedisGroup:   "trendcast-group",
			KafkaGroupID: "trendcast-viewer",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
	}
}
