package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/samvad-hq/tcpwave-connector/pkg/tcpwave"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// connectionPrefix namespaces the TCPWave connection keys, e.g. TCPWAVE_HOST.
const connectionPrefix = "tcpwave_"

// connectionKeys are the host-framework dictionary keys read under connectionPrefix.
var connectionKeys = []string{
	tcpwave.ConfigHostKey,
	tcpwave.ConfigPortKey,
	tcpwave.ConfigProtocolKey,
	tcpwave.ConfigSessionTokenKey,
	tcpwave.ConfigVerifySSLKey,
	tcpwave.ConfigTimeoutSecondsKey,
}

// FlagKeys maps command-line flag names onto configuration keys.
var FlagKeys = map[string]string{
	"host":       connectionPrefix + tcpwave.ConfigHostKey,
	"port":       connectionPrefix + tcpwave.ConfigPortKey,
	"protocol":   connectionPrefix + tcpwave.ConfigProtocolKey,
	"token":      connectionPrefix + tcpwave.ConfigSessionTokenKey,
	"verify-ssl": connectionPrefix + tcpwave.ConfigVerifySSLKey,
	"timeout":    connectionPrefix + tcpwave.ConfigTimeoutSecondsKey,
	"log-level":  "log_level",
}

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName        string `mapstructure:"app_name"`
	Env            string `mapstructure:"app_env"`
	LogLevel       string `mapstructure:"log_level"`
	PublishersFile string `mapstructure:"publishers_file"`

	JournalType           string        `mapstructure:"journal_type"`
	JournalPath           string        `mapstructure:"journal_path"`
	JournalTTLSeconds     int64         `mapstructure:"journal_ttl_seconds"`
	JournalCleanupSeconds int64         `mapstructure:"journal_cleanup_interval_seconds"`
	JournalTTL            time.Duration `mapstructure:"-"`
	JournalCleanup        time.Duration `mapstructure:"-"`

	// Connection holds the raw TCPWave connection dictionary.
	Connection map[string]any `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files. Flags
// named in FlagKeys override both when set.
func Load(flags *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "tcpwave-connector")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("publishers_file", "")
	v.SetDefault("journal_type", "none")
	v.SetDefault("journal_path", "./data/journal.db")
	v.SetDefault("journal_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("journal_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.SetDefault(connectionPrefix+tcpwave.ConfigHostKey, "")
	v.SetDefault(connectionPrefix+tcpwave.ConfigPortKey, 443)
	v.SetDefault(connectionPrefix+tcpwave.ConfigProtocolKey, tcpwave.ProtocolHTTPS)
	v.SetDefault(connectionPrefix+tcpwave.ConfigSessionTokenKey, "")
	v.SetDefault(connectionPrefix+tcpwave.ConfigVerifySSLKey, false)
	v.SetDefault(connectionPrefix+tcpwave.ConfigTimeoutSecondsKey, 0)

	v.AutomaticEnv()

	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.JournalTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid journal_ttl_seconds (must be positive seconds)")
	}
	if cfg.JournalCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid journal_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.JournalTTL = time.Duration(cfg.JournalTTLSeconds) * time.Second
	cfg.JournalCleanup = time.Duration(cfg.JournalCleanupSeconds) * time.Second

	cfg.Connection = make(map[string]any, len(connectionKeys))
	for _, k := range connectionKeys {
		cfg.Connection[k] = v.Get(connectionPrefix + k)
	}

	return &cfg, nil
}

// TCPWave converts the connection dictionary into a connector config.
func (c *Config) TCPWave() (tcpwave.Config, error) {
	if c == nil {
		return tcpwave.Config{}, fmt.Errorf("config must not be nil")
	}
	return tcpwave.ConfigFromMap(c.Connection)
}

// Summary returns a loggable view of the configuration without secrets.
func (c *Config) Summary() map[string]any {
	if c == nil {
		return nil
	}
	conn := make(map[string]any, len(c.Connection))
	for k, val := range c.Connection {
		if k == tcpwave.ConfigSessionTokenKey {
			if s, ok := val.(string); ok && strings.TrimSpace(s) != "" {
				val = "<redacted>"
			}
		}
		conn[k] = val
	}
	return map[string]any{
		"app_name":        c.AppName,
		"app_env":         c.Env,
		"log_level":       c.LogLevel,
		"publishers_file": c.PublishersFile,
		"journal_type":    c.JournalType,
		"journal_path":    c.JournalPath,
		"connection":      conn,
	}
}
