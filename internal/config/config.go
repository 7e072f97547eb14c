package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"finantrack/internal/currency"
	"finantrack/internal/logging"
	"finantrack/internal/version"
)

// Config materialises application configuration.
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Logging     logging.Config    `mapstructure:"logging"`
	Quotes      QuotesConfig      `mapstructure:"quotes"`
	History     HistoryConfig     `mapstructure:"history"`
	Simulations SimulationsConfig `mapstructure:"simulations"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Scheduler   SchedulerConfig   `mapstructure:"scheduler"`
	Notify      NotifyConfig      `mapstructure:"notify"`
	Export      ExportConfig      `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// QuotesConfig covers the quote provider.
type QuotesConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	LocalCurrency  string        `mapstructure:"local_currency"`
	Currencies     []string      `mapstructure:"currencies"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// HistoryConfig controls the daily history window and date keys.
type HistoryConfig struct {
	Days       int    `mapstructure:"days"`
	Timezone   string `mapstructure:"timezone"`
	DateLayout string `mapstructure:"date_layout"`
	SortByDate bool   `mapstructure:"sort_by_date"`
}

// SimulationsConfig points at the simulations REST resource.
type SimulationsConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity for the quote archive.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// SchedulerConfig governs the archiver cadence.
type SchedulerConfig struct {
	Interval        time.Duration `mapstructure:"interval"`
	AlignToBucket   bool          `mapstructure:"align_to_bucket"`
	AdvisoryLockKey int64         `mapstructure:"advisory_lock_key"`
	StartupDelay    time.Duration `mapstructure:"startup_delay"`
}

// NotifyConfig routes user notifications.
type NotifyConfig struct {
	Console  bool           `mapstructure:"console"`
	Log      bool           `mapstructure:"log"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig describes the Telegram notifier.
type TelegramConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	BotToken string        `mapstructure:"bot_token"`
	ChatID   string        `mapstructure:"chat_id"`
	APIBase  string        `mapstructure:"api_base"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ExportConfig sets chart export behaviour.
type ExportConfig struct {
	Width         int      `mapstructure:"width"`
	Height        int      `mapstructure:"height"`
	SecondaryAxis []string `mapstructure:"secondary_axis"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FINANTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "finantrack")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("quotes.base_url", "https://economia.awesomeapi.com.br")
	v.SetDefault("quotes.local_currency", "BRL")
	v.SetDefault("quotes.currencies", []string{"USD", "EUR", "BTC"})
	v.SetDefault("quotes.request_timeout", "10s")
	v.SetDefault("quotes.user_agent", version.UserAgent())

	v.SetDefault("history.days", 7)
	v.SetDefault("history.timezone", "America/Sao_Paulo")
	v.SetDefault("history.date_layout", "02/01/2006")
	v.SetDefault("history.sort_by_date", false)

	v.SetDefault("simulations.base_url", "http://localhost:8080")
	v.SetDefault("simulations.request_timeout", "10s")

	v.SetDefault("scheduler.interval", "15m")
	v.SetDefault("scheduler.align_to_bucket", true)
	v.SetDefault("scheduler.advisory_lock_key", int64(0x66696e74))
	v.SetDefault("scheduler.startup_delay", "0s")

	v.SetDefault("notify.console", true)
	v.SetDefault("notify.log", false)
	v.SetDefault("notify.telegram.enabled", false)
	v.SetDefault("notify.telegram.api_base", "https://api.telegram.org")
	v.SetDefault("notify.telegram.timeout", "10s")

	v.SetDefault("export.width", 1280)
	v.SetDefault("export.height", 720)
	v.SetDefault("export.secondary_axis", []string{"BTC"})

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "30m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if _, err := currency.ParseCode(c.Quotes.LocalCurrency); err != nil {
		return fmt.Errorf("quotes.local_currency: %w", err)
	}
	if len(c.Quotes.Currencies) == 0 {
		return fmt.Errorf("quotes.currencies must not be empty")
	}
	codes, err := currency.ParseCodes(c.Quotes.Currencies)
	if err != nil {
		return fmt.Errorf("quotes.currencies: %w", err)
	}
	seen := make(map[currency.Code]bool, len(codes))
	for _, code := range codes {
		if code == c.LocalCurrency() {
			return fmt.Errorf("quotes.currencies must not contain the local currency %s", code)
		}
		if seen[code] {
			return fmt.Errorf("quotes.currencies lists %s more than once", code)
		}
		seen[code] = true
	}
	if c.History.Days <= 0 {
		return fmt.Errorf("history.days must be greater than zero")
	}
	if _, err := time.LoadLocation(c.History.Timezone); err != nil {
		return fmt.Errorf("history.timezone: %w", err)
	}
	if strings.TrimSpace(c.Simulations.BaseURL) == "" {
		return fmt.Errorf("simulations.base_url must be set")
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be greater than zero")
	}
	if c.Export.Width <= 0 || c.Export.Height <= 0 {
		return fmt.Errorf("export.width and export.height must be greater than zero")
	}
	if c.Notify.Telegram.Enabled {
		if c.Notify.Telegram.BotToken == "" {
			return fmt.Errorf("notify.telegram.bot_token must be set")
		}
		if c.Notify.Telegram.ChatID == "" {
			return fmt.Errorf("notify.telegram.chat_id must be set")
		}
	}
	return nil
}

// LocalCurrency returns the validated local currency code.
func (c *Config) LocalCurrency() currency.Code {
	code, _ := currency.ParseCode(c.Quotes.LocalCurrency)
	return code
}

// TrackedCurrencies returns the configured currencies in display order.
func (c *Config) TrackedCurrencies() []currency.Code {
	codes, _ := currency.ParseCodes(c.Quotes.Currencies)
	return codes
}

// Location returns the time zone used for history date keys.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.History.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ResolveDays returns either the CLI override or config default.
func (c *Config) ResolveDays(override int) int {
	if override > 0 {
		return override
	}
	return c.History.Days
}
