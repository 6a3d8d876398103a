package config

import (
	"time"

	"github.com/spf13/viper"
	"github.com/wb-go/wbf/zlog"
)

// Config holds the main configuration for the application.
type Config struct {
	Server   Server   `mapstructure:"server"`
	Graphics Graphics `mapstructure:"graphics"`
	Storage  Storage  `mapstructure:"storage"`
	Kafka    Kafka    `mapstructure:"kafka"`
	Retry    Retry    `mapstructure:"retry"`
	Redis    Redis    `mapstructure:"redis"`
}

// Server holds HTTP server-related configuration.
type Server struct {
	HTTPPort string `mapstructure:"http_port"` // HTTP port to listen on
}

// Graphics configures rendering.
type Graphics struct {
	Executable string        `mapstructure:"executable"` // convert or magick binary
	Backend    string        `mapstructure:"backend"`    // magick or native
	Background string        `mapstructure:"background"` // #hex, checkerboard or transparent
	Quality    int           `mapstructure:"quality"`
	Optimize   bool          `mapstructure:"optimize"` // run external optimizers after a render
	Timeout    time.Duration `mapstructure:"timeout"`  // per tool invocation, 0 disables

	RootDir  string `mapstructure:"root_dir"`  // source images served over HTTP
	CacheDir string `mapstructure:"cache_dir"` // rendered HTTP variants
	WorkDir  string `mapstructure:"work_dir"`  // scratch space for queued renders

	Optimizers map[string][]string `mapstructure:"optimizers"` // format -> tool argv
}

// Storage holds configuration for the file storage backend.
type Storage struct {
	Endpoint   string `mapstructure:"endpoint"`
	AccessKey  string `mapstructure:"access_key"`
	SecretKey  string `mapstructure:"secret_key"`
	BucketName string `mapstructure:"bucket_name"`
	UseSSL     bool   `mapstructure:"use_ssl"`
}

// Kafka holds configuration for the Kafka message queue.
type Kafka struct {
	GroupID string   `mapstructure:"group_id"` // Consumer group ID
	Topic   string   `mapstructure:"topic"`    // Kafka topic name
	Brokers []string `mapstructure:"brokers"`  // List of Kafka broker addresses
}

// Retry defines retry policy configuration.
type Retry struct {
	Attempts int           `mapstructure:"attempts"` // Number of retry attempts
	Delay    time.Duration `mapstructure:"delay"`    // Initial delay between retries
	Backoff  float64       `mapstructure:"backoff"`  // Backoff multiplier for delays
}

// Redis configures the shared render lock. An empty address keeps locking
// in-process.
type Redis struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_port", "8080")

	v.SetDefault("graphics.executable", "convert")
	v.SetDefault("graphics.backend", "magick")
	v.SetDefault("graphics.background", "transparent")
	v.SetDefault("graphics.quality", 85)
	v.SetDefault("graphics.timeout", 60*time.Second)
	v.SetDefault("graphics.root_dir", "./public")
	v.SetDefault("graphics.cache_dir", "./cache")
	v.SetDefault("graphics.work_dir", "./tmp")

	v.SetDefault("kafka.topic", "graphics.render")
	v.SetDefault("kafka.group_id", "image-converter")

	v.SetDefault("retry.attempts", 3)
	v.SetDefault("retry.delay", time.Second)
	v.SetDefault("retry.backoff", 2.0)

	v.SetDefault("redis.lock_ttl", 2*time.Minute)
}

// mustBindEnv binds critical environment variables to Viper keys.
//
// It panics if any environment variable cannot be bound.
func mustBindEnv(v *viper.Viper) {
	bindings := map[string]string{
		"graphics.executable": "GRAPHICS_EXECUTABLE",
		"graphics.backend":    "GRAPHICS_BACKEND",
		"storage.access_key":  "MINIO_ACCESS_KEY",
		"storage.secret_key":  "MINIO_SECRET_KEY",
		"redis.addr":          "REDIS_ADDR",
		"redis.password":      "REDIS_PASSWORD",
	}

	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			zlog.Logger.Panic().Err(err).Msgf("failed to bind env %s", env)
		}
	}
}

// Load reads the yaml configuration at path on top of the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	mustBindEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad loads the configuration from the specified file path.
// It panics if the configuration file cannot be loaded or unmarshaled.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		zlog.Logger.Panic().Err(err).Msg("failed to load config")
	}

	return cfg
}
