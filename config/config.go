// Package config loads and validates the tracker configuration from a YAML
// file with environment variable overrides. Malformed entries are rejected
// here, before anything reaches the collection core.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

var supportedExchanges = map[string]struct{}{
	"binance": {},
	"coinex":  {},
}

var supportedConnectors = map[string]struct{}{
	"postgres": {},
	"mysql":    {},
	"sqlite":   {},
}

// Config is the full application configuration, constructed once at startup
// and passed by value to the components that need it.
type Config struct {
	Accounts         []Account `mapstructure:"accounts"`
	Database         Database  `mapstructure:"database"`
	Schedule         Schedule  `mapstructure:"schedule"`
	Log              Log       `mapstructure:"log"`
	SkipZeroBalances bool      `mapstructure:"skip_zero_balances"`
}

// Account is one exchange credential being tracked.
type Account struct {
	ID        string `mapstructure:"id"`
	Exchange  string `mapstructure:"exchange"`
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
}

// Schedule holds the cycle timing and the retry budget for transient
// exchange failures.
type Schedule struct {
	Interval       time.Duration `mapstructure:"interval"`
	CycleTimeout   time.Duration `mapstructure:"cycle_timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
}

// Log configures the logger output.
type Log struct {
	Level      string `mapstructure:"level"`       // "debug", "info", "warn", "error"
	Format     string `mapstructure:"format"`      // "json" or "console"
	OutputFile string `mapstructure:"output_file"` // rotated file path (optional)
}

// Load reads the configuration file at path and applies environment
// overrides (dots replaced by underscores, e.g. DATABASE_PASSWORD).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("schedule.interval", 5*time.Minute)
	v.SetDefault("schedule.cycle_timeout", 2*time.Minute)
	v.SetDefault("schedule.max_retries", 3)
	v.SetDefault("schedule.initial_backoff", time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("database.connector", "sqlite")
	v.SetDefault("database.path", "coinfolio.db")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

func (c *Config) validate() error {
	if len(c.Accounts) == 0 {
		return errors.New("config: at least one account is required")
	}

	seen := make(map[string]struct{}, len(c.Accounts))
	for i := range c.Accounts {
		account := &c.Accounts[i]
		if _, ok := supportedExchanges[account.Exchange]; !ok {
			return errors.Errorf("config: unsupported exchange %q", account.Exchange)
		}
		if account.APIKey == "" || account.APISecret == "" {
			return errors.Errorf("config: missing api credentials for %s account", account.Exchange)
		}
		if account.ID == "" {
			account.ID = account.Exchange
		}
		if _, dup := seen[account.ID]; dup {
			return errors.Errorf("config: duplicate account id %q", account.ID)
		}
		seen[account.ID] = struct{}{}
	}

	if _, ok := supportedConnectors[c.Database.Connector]; !ok {
		return errors.Errorf("config: unsupported database connector %q", c.Database.Connector)
	}
	if c.Schedule.Interval <= 0 {
		return errors.New("config: schedule interval must be positive")
	}
	if c.Schedule.CycleTimeout <= 0 || c.Schedule.CycleTimeout > c.Schedule.Interval {
		return errors.New("config: cycle timeout must be positive and not exceed the interval")
	}
	if c.Schedule.MaxRetries < 0 {
		return errors.New("config: max retries must not be negative")
	}
	return nil
}
