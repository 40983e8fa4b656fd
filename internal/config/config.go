package config

import (
	"net"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
)

const envPrefix = "MONITOR"

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Config holds the runtime knobs of the monitor. The endpoint list itself is
// loaded separately by LoadEndpoints.
type Config struct {
	Interval        time.Duration `mapstructure:"interval"`        // pause between cycles
	Jitter          float64       `mapstructure:"jitter"`          // 0..1 fraction of Interval added at random
	RequestTimeout  time.Duration `mapstructure:"request_timeout"` // per probe
	SlowThreshold   time.Duration `mapstructure:"slow_threshold"`  // responses at or above this are DOWN
	Concurrency     int           `mapstructure:"concurrency"`     // probes in flight per cycle
	LogDir          string        `mapstructure:"log_dir"`         // rotated log file lives here
	LogLevel        string        `mapstructure:"log_level"`       // debug|info|warn|error
	MetricsAddr     string        `mapstructure:"metrics_addr"`    // empty disables the status server
	DiagnoseDNS     bool          `mapstructure:"diagnose_dns"`    // resolve hosts of unreachable endpoints
	VerifyTLS       bool          `mapstructure:"verify_tls"`
	FollowRedirects bool          `mapstructure:"follow_redirects"`
	UserAgent       string        `mapstructure:"user_agent"`
}

// FromEnv reads MONITOR_* environment variables on top of the defaults.
func FromEnv() (*Config, error) {
	v := viper.New()

	v.SetDefault("interval", "15s")
	v.SetDefault("jitter", 0.0)
	v.SetDefault("request_timeout", "5s")
	v.SetDefault("slow_threshold", "500ms")
	v.SetDefault("concurrency", 1)
	v.SetDefault("log_dir", "logs")
	v.SetDefault("log_level", LogLevelInfo)
	v.SetDefault("metrics_addr", "")
	v.SetDefault("diagnose_dns", false)
	v.SetDefault("verify_tls", true)
	v.SetDefault("follow_redirects", true)
	v.SetDefault("user_agent", "endpointmonitor/1.0")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Interval, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.Jitter, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.RequestTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.SlowThreshold, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.Concurrency, validation.Required, validation.Min(1)),
		validation.Field(&c.LogDir, validation.Required),
		validation.Field(&c.LogLevel,
			validation.Required,
			validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
		),
		validation.Field(&c.MetricsAddr, validation.When(c.MetricsAddr != "", validation.By(validateHostPort))),
	)
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}
	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}
	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}
	return nil
}
