package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hupe1980/ncd/compressor"
)

// Config holds every setting the commands read. It is filled from viper, so
// each field can come from a flag, an NCD_ environment variable, or the
// config file.
type Config struct {
	Output       string        `mapstructure:"output"`
	Compressor   string        `mapstructure:"compressor"`
	Delta        int           `mapstructure:"delta"`
	Workers      int           `mapstructure:"workers"`
	SaveEvery    int           `mapstructure:"save_every"`
	SaveInterval time.Duration `mapstructure:"save_interval"`
	Codec        string        `mapstructure:"codec"`
	IOLimit      int64         `mapstructure:"io_limit"`
	MemoryLimit  int64         `mapstructure:"memory_limit"`
	CacheSize    int64         `mapstructure:"cache_size"`
	MetricsAddr  string        `mapstructure:"metrics_addr"`
	DDBTable     string        `mapstructure:"ddb_table"`
	Debug        bool          `mapstructure:"debug"`
	LogFormat    string        `mapstructure:"log_format"`
	MinIO        MinIOConfig   `mapstructure:"minio"`
}

// MinIOConfig holds credentials for minio:// locations.
type MinIOConfig struct {
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// deltaAlgorithmDefault selects the algorithm's own delta setting.
const deltaAlgorithmDefault = -1

// NewDefaultConfig returns the built-in defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Output:     "distances.json",
		Compressor: string(compressor.LZMA),
		Delta:      deltaAlgorithmDefault,
		Workers:    1,
		SaveEvery:  1,
		Codec:      "json",
		LogFormat:  "pretty",
	}
}

// CompressorConfig resolves the compressor settings.
func (c *Config) CompressorConfig() (compressor.Config, error) {
	algo, err := compressor.ParseAlgorithm(c.Compressor)
	if err != nil {
		return compressor.Config{}, err
	}
	cfg := compressor.ConfigFor(algo)
	if c.Delta != deltaAlgorithmDefault {
		cfg.DeltaDistance = c.Delta
	}
	return cfg, cfg.Validate()
}

// Validate checks the settings used by build.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.SaveEvery < 1 {
		return fmt.Errorf("save-every must be positive, got %d", c.SaveEvery)
	}
	if c.SaveInterval < 0 {
		return fmt.Errorf("save-interval must not be negative, got %s", c.SaveInterval)
	}
	if c.IOLimit < 0 || c.MemoryLimit < 0 || c.CacheSize < 0 {
		return errors.New("io-limit, memory-limit and cache-size must not be negative")
	}
	if _, err := c.CompressorConfig(); err != nil {
		return err
	}
	return nil
}

// InitViper returns a viper instance seeded with the defaults, the optional
// config file, and NCD_ environment variables.
//
// Precedence (highest to lowest): bound flags, environment, config file,
// defaults.
func InitViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	setViperDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("NCD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	return v, nil
}

func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("output", d.Output)
	v.SetDefault("compressor", d.Compressor)
	v.SetDefault("delta", d.Delta)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("save_every", d.SaveEvery)
	v.SetDefault("save_interval", d.SaveInterval)
	v.SetDefault("codec", d.Codec)
	v.SetDefault("io_limit", d.IOLimit)
	v.SetDefault("memory_limit", d.MemoryLimit)
	v.SetDefault("cache_size", d.CacheSize)
	v.SetDefault("metrics_addr", d.MetricsAddr)
	v.SetDefault("ddb_table", d.DDBTable)
	v.SetDefault("debug", d.Debug)
	v.SetDefault("log_format", d.LogFormat)

	// MinIO
	v.SetDefault("minio.access_key", d.MinIO.AccessKey)
	v.SetDefault("minio.secret_key", d.MinIO.SecretKey)
	v.SetDefault("minio.use_ssl", d.MinIO.UseSSL)
}

// LoadConfig decodes v into a Config.
func LoadConfig(v *viper.Viper) (*Config, error) {
	cfg := NewDefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}
