// Package config loads and validates runtime configuration from file and
// environment.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/rhinoxpay/rhinoxcore/database"
)

// DatabaseConfig selects and parameterizes the storage driver
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     uint16 `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`
}

// APIConfig parameterizes the HTTP boundary
type APIConfig struct {
	ListenAddress  string        `mapstructure:"listen_address"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// AuthConfig holds the admin credentials for privileged operations
type AuthConfig struct {
	AdminTOTPSecret string `mapstructure:"admin_totp_secret"`
}

// P2PConfig tunes the order expiry sweeper
type P2PConfig struct {
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	SweepBatch    int           `mapstructure:"sweep_batch"`
}

// ProvisionConfig tunes the wallet provisioning worker
type ProvisionConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	DefaultFiat  string        `mapstructure:"default_fiat"`
	DefaultCoin  string        `mapstructure:"default_coin"`
}

// LoggingConfig controls the shared log core
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// Config is the full runtime configuration
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	API       APIConfig       `mapstructure:"api"`
	Auth      AuthConfig      `mapstructure:"auth"`
	P2P       P2PConfig       `mapstructure:"p2p"`
	Provision ProvisionConfig `mapstructure:"provision"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", database.DBSQLite3)
	v.SetDefault("database.database", "rhinoxcore.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("api.listen_address", ":9050")
	v.SetDefault("api.request_timeout", 30*time.Second)
	v.SetDefault("p2p.sweep_interval", time.Minute)
	v.SetDefault("p2p.sweep_batch", 100)
	v.SetDefault("provision.poll_interval", 5*time.Second)
	v.SetDefault("provision.max_attempts", 5)
	v.SetDefault("provision.default_fiat", "NGN")
	v.SetDefault("provision.default_coin", "USDT")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.json", true)
}

// Load reads configuration from the given file path, if any, layered under
// RHINOX_ prefixed environment variables
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("RHINOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DatabaseConfig converts the loaded settings into the store's config type
func (c *Config) DatabaseConfig() *database.Config {
	return &database.Config{
		Enabled:  true,
		Driver:   c.Database.Driver,
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		Username: c.Database.Username,
		Password: c.Database.Password,
		Database: c.Database.Database,
		SSLMode:  c.Database.SSLMode,
	}
}
