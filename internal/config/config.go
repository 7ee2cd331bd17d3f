package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database" json:"database"`
	Server   ServerConfig   `mapstructure:"server" json:"server"`
	Scanner  ScannerConfig  `mapstructure:"scanner" json:"scanner"`
	Barcode  BarcodeConfig  `mapstructure:"barcode" json:"barcode"`
	Logging  LoggingConfig  `mapstructure:"logging" json:"logging"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host" json:"host"`
	Port            int           `mapstructure:"port" json:"port"`
	Database        string        `mapstructure:"database" json:"database"`
	Username        string        `mapstructure:"username" json:"username"`
	Password        string        `mapstructure:"password" json:"password"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" json:"conn_max_idle_time"`
	QueryTimeout    time.Duration `mapstructure:"query_timeout" json:"query_timeout"`
}

// DSN builds the MySQL connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.Username,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

type ServerConfig struct {
	Port int    `mapstructure:"port" json:"port"`
	Host string `mapstructure:"host" json:"host"`
}

// Addr returns host:port for the HTTP listener
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ScannerConfig holds the feedback windows of a scan session
type ScannerConfig struct {
	SuccessDisplay       time.Duration `mapstructure:"success_display" json:"success_display"`
	ClearDelay           time.Duration `mapstructure:"clear_delay" json:"clear_delay"`
	FailureDisplay       time.Duration `mapstructure:"failure_display" json:"failure_display"`
	ImageDecodeEnabled   bool          `mapstructure:"image_decode_enabled" json:"image_decode_enabled"`
	MaxImageBytes        int           `mapstructure:"max_image_bytes" json:"max_image_bytes"`
	TerminalBellFeedback bool          `mapstructure:"terminal_bell_feedback" json:"terminal_bell_feedback"`
}

type BarcodeConfig struct {
	Width     int    `mapstructure:"width" json:"width"`
	Height    int    `mapstructure:"height" json:"height"`
	QuietZone int    `mapstructure:"quiet_zone" json:"quiet_zone"`
	QRSize    int    `mapstructure:"qr_size" json:"qr_size"`
	StoreDir  string `mapstructure:"store_dir" json:"store_dir"`
	BaseURL   string `mapstructure:"base_url" json:"base_url"`
}

type LoggingConfig struct {
	Level       string `mapstructure:"level" json:"level"`
	File        string `mapstructure:"file" json:"file"`
	Environment string `mapstructure:"environment" json:"environment"`
}

// legacyEnv keeps the plain variable names older deployments export
var legacyEnv = map[string]string{
	"database.host":     "DB_HOST",
	"database.port":     "DB_PORT",
	"database.database": "DB_NAME",
	"database.username": "DB_USERNAME",
	"database.password": "DB_PASSWORD",
	"server.host":       "SERVER_HOST",
	"server.port":       "SERVER_PORT",
	"logging.level":     "LOG_LEVEL",
	"logging.file":      "LOG_FILE",
}

// LoadConfig reads defaults, then the optional file at path, then the environment.
// Environment variables use the INVENTORY_ prefix (INVENTORY_SCANNER_FAILURE_DISPLAY=3s).
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("INVENTORY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, "INVENTORY_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the scan session cannot run with
func (c *Config) Validate() error {
	if c.Scanner.SuccessDisplay <= 0 || c.Scanner.FailureDisplay <= 0 {
		return errors.New("scanner display windows must be positive")
	}
	if c.Scanner.ClearDelay < 0 {
		return errors.New("scanner clear delay must not be negative")
	}
	if c.Barcode.Width <= 0 || c.Barcode.Height <= 0 {
		return errors.New("barcode dimensions must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "inventory")
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.conn_max_idle_time", 5*time.Minute)
	v.SetDefault("database.query_timeout", 10*time.Second)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	v.SetDefault("scanner.success_display", 1500*time.Millisecond)
	v.SetDefault("scanner.clear_delay", 500*time.Millisecond)
	v.SetDefault("scanner.failure_display", 2*time.Second)
	v.SetDefault("scanner.image_decode_enabled", false)
	v.SetDefault("scanner.max_image_bytes", 5<<20)
	v.SetDefault("scanner.terminal_bell_feedback", true)

	v.SetDefault("barcode.width", 400)
	v.SetDefault("barcode.height", 120)
	v.SetDefault("barcode.quiet_zone", 10)
	v.SetDefault("barcode.qr_size", 256)
	v.SetDefault("barcode.store_dir", "barcodes")
	v.SetDefault("barcode.base_url", "/barcodes")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "stdout")
	v.SetDefault("logging.environment", "production")
}
