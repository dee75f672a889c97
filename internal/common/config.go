package common

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	OCR     OCRConfig     `mapstructure:"ocr"`
	Extract ExtractConfig `mapstructure:"extract"`
	Scan    ScanConfig    `mapstructure:"scan"`
	Store   StoreConfig   `mapstructure:"store"`
	Export  ExportConfig  `mapstructure:"export"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr      string `mapstructure:"addr"`
	UploadDir string `mapstructure:"upload_dir"`
}

// OCRConfig holds OCR-engine configuration.
type OCRConfig struct {
	Tesseract           string `mapstructure:"tesseract"`
	Languages           string `mapstructure:"languages"`
	TessdataDir         string `mapstructure:"tessdata_dir"`
	PSM                 int    `mapstructure:"psm"`
	OEM                 int    `mapstructure:"oem"`
	EnableTSVConfidence bool   `mapstructure:"enable_tsv_confidence"`
}

// ExtractConfig holds the tunable heuristic constants of the field
// extraction engine plus an optional keyword-table overrides file.
type ExtractConfig struct {
	TotalLookahead int    `mapstructure:"total_lookahead"`
	TailWindow     int    `mapstructure:"tail_window"`
	TablesPath     string `mapstructure:"tables_path"`
}

// ScanConfig holds batch-orchestration configuration.
type ScanConfig struct {
	Workers      int           `mapstructure:"workers"`
	QueueSize    int           `mapstructure:"queue_size"`
	ImageTimeout time.Duration `mapstructure:"image_timeout"`
}

// StoreConfig holds persistence configuration.
type StoreConfig struct {
	Path string `mapstructure:"path"` // SQLite file; ":memory:" for ephemeral
}

// ExportConfig holds export output paths.
type ExportConfig struct {
	XLSXPath   string `mapstructure:"xlsx_path"`
	RawLogPath string `mapstructure:"raw_log_path"`
}

// LoadConfig reads configuration from an optional YAML file and RSCAN_*
// environment variables, with sane defaults for everything.
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.addr", ":5000")
	v.SetDefault("server.upload_dir", "./images_to_read")
	v.SetDefault("ocr.tesseract", "tesseract")
	v.SetDefault("ocr.languages", "ita+eng")
	v.SetDefault("ocr.psm", 6)
	v.SetDefault("extract.total_lookahead", 5)
	v.SetDefault("extract.tail_window", 15)
	v.SetDefault("scan.workers", 4)
	v.SetDefault("scan.queue_size", 256)
	v.SetDefault("scan.image_timeout", 2*time.Minute)
	v.SetDefault("store.path", "./receipts.db")
	v.SetDefault("export.xlsx_path", "./receipts_data.xlsx")
	v.SetDefault("export.raw_log_path", "./ocr_raw_data.txt")

	v.SetEnvPrefix("RSCAN")
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.receipts-scanner")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "server.addr is required", ErrInvalidInput)
	}
	if c.Server.UploadDir == "" {
		return NewAppError("CONFIG_ERROR", "server.upload_dir is required", ErrInvalidInput)
	}
	if c.Scan.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "scan.workers must be positive", ErrInvalidInput)
	}
	return nil
}
