package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Addr     string `mapstructure:"api_addr"` // API bind address, e.g., "127.0.0.1:8080" or ":8080" (Docker)
	Port     string `mapstructure:"port"`     // platform-assigned port; overrides Addr as ":PORT"
	AppEnv   string `mapstructure:"app_env"`
	LogDir   string `mapstructure:"log_dir"`
	LogLevel string `mapstructure:"log_level"`

	LogRetentionDays int `mapstructure:"log_retention_days"`

	TargetURL           string `mapstructure:"target_url"`
	CheckIntervalSec    int    `mapstructure:"check_interval"`
	ResponseThresholdMS int64  `mapstructure:"response_threshold"`
	RetryCount          int    `mapstructure:"retry_count"`

	DiscordWebhookURL string `mapstructure:"discord_webhook_url"`
	SlackWebhookURL   string `mapstructure:"slack_webhook_url"`

	MetricsRetentionHours int    `mapstructure:"metrics_retention_hours"`
	StorageDir            string `mapstructure:"storage_dir"` // empty means in-memory store
	PersistLastStatus     bool   `mapstructure:"persist_last_status"`
	DNSDiagnose           bool   `mapstructure:"dns_diagnose"`

	AllowedOriginsCSV string `mapstructure:"allowed_origins"`
	PublicKeysCSV     string `mapstructure:"public_api_keys"`
	AdminKeysCSV      string `mapstructure:"admin_api_keys"`

	PublicRPM   int `mapstructure:"public_rpm"`
	PublicBurst int `mapstructure:"public_burst"`
	AdminRPM    int `mapstructure:"admin_rpm"`
	AdminBurst  int `mapstructure:"admin_burst"`

	AllowedOrigins []string `mapstructure:"-"`
	PublicAPIKeys  []string `mapstructure:"-"`
	AdminAPIKeys   []string `mapstructure:"-"`
}

// Load reads defaults, then the optional YAML file at path, then the
// environment. Keys in the file use the lower-case env names.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	// Bind address (Windows-friendly default)
	v.SetDefault("api_addr", "127.0.0.1:8080")
	v.SetDefault("port", "")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_dir", "logs")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_retention_days", 7)

	v.SetDefault("target_url", "https://example.com")
	v.SetDefault("check_interval", 30)
	v.SetDefault("response_threshold", 5000)
	v.SetDefault("retry_count", 3)

	v.SetDefault("discord_webhook_url", "")
	v.SetDefault("slack_webhook_url", "")

	v.SetDefault("metrics_retention_hours", 24)
	v.SetDefault("storage_dir", "storage")
	v.SetDefault("persist_last_status", false)
	v.SetDefault("dns_diagnose", true)

	v.SetDefault("allowed_origins", "*")
	v.SetDefault("public_api_keys", "")
	v.SetDefault("admin_api_keys", "")
	v.SetDefault("public_rpm", 120)
	v.SetDefault("public_burst", 60)
	v.SetDefault("admin_rpm", 30)
	v.SetDefault("admin_burst", 10)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.Port != "" {
		cfg.Addr = ":" + cfg.Port
	}
	if cfg.CheckIntervalSec < 0 {
		cfg.CheckIntervalSec = 0
	}
	if cfg.RetryCount < 0 {
		cfg.RetryCount = 0
	}
	if cfg.ResponseThresholdMS < 0 {
		cfg.ResponseThresholdMS = 0
	}
	cfg.AllowedOrigins = splitCSV(cfg.AllowedOriginsCSV)
	cfg.PublicAPIKeys = splitCSV(cfg.PublicKeysCSV)
	cfg.AdminAPIKeys = splitCSV(cfg.AdminKeysCSV)
	return cfg, nil
}

// FromEnv loads the file named by CONFIG_FILE, if any, plus the environment.
func FromEnv() (Config, error) {
	return Load(os.Getenv("CONFIG_FILE"))
}

func (c Config) Production() bool { return strings.EqualFold(c.AppEnv, "production") }

func (c Config) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalSec) * time.Second
}

func (c Config) MetricsRetention() time.Duration {
	return time.Duration(c.MetricsRetentionHours) * time.Hour
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
