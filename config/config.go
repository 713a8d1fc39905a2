package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avdberg/spotwatch-go/logging"
	"github.com/spf13/viper"
)

type AppConfigApi struct {
	Address string
	Port    int16
}

type AppConfigDatabase struct {
	Path string
	// How many days of refresh history to keep before it gets purged
	HistoryRetentionDays *int `mapstructure:"history_retention_days"`
	// How many days daily backup files should be stored before they get deleted
	BackupRetentionDays *int `mapstructure:"backup_retention_days"`
}

func (d AppConfigDatabase) GetHistoryRetentionDays() int {
	if d.HistoryRetentionDays == nil {
		return 90
	}
	return *d.HistoryRetentionDays
}

func (d AppConfigDatabase) GetBackupRetentionDays() int {
	if d.BackupRetentionDays == nil {
		return 90
	}
	return *d.BackupRetentionDays
}

type AppConfigMqtt struct {
	Enabled  bool
	Host     string
	Port     int16
	Username string
	Password string
	// Client id presented to the broker, default: "spotwatch"
	ClientId *string `mapstructure:"client_id"`
	// Root of the state topics, default: "spotwatch"
	BaseTopic *string `mapstructure:"base_topic"`
	// Home Assistant discovery prefix, default: "homeassistant"
	DiscoveryPrefix *string `mapstructure:"discovery_prefix"`
}

func (m AppConfigMqtt) GetClientId() string {
	if m.ClientId == nil {
		return "spotwatch"
	}
	return *m.ClientId
}

func (m AppConfigMqtt) GetBaseTopic() string {
	if m.BaseTopic == nil {
		return "spotwatch"
	}
	return *m.BaseTopic
}

func (m AppConfigMqtt) GetDiscoveryPrefix() string {
	if m.DiscoveryPrefix == nil {
		return "homeassistant"
	}
	return *m.DiscoveryPrefix
}

type AppConfigPrices struct {
	// GraphQL endpoint, empty means the public Frank Energie API
	Url string
	// Cron spec for the regular refresh, default: hourly on the hour
	RunAt *string `mapstructure:"run_at"`
	// Cron spec for the extra polls around day-ahead publication,
	// default: every 5 minutes between 13:00 and 15:59 UTC
	PublicationRunAt *string `mapstructure:"publication_run_at"`
	// Hour of the UTC day from which tomorrow's prices are requested, default: 13
	TomorrowAfterHour *int `mapstructure:"tomorrow_after_hour"`
	// Minutes after the last successful refresh before prices count as stale, default: 120
	StaleAfterMinutes *int `mapstructure:"stale_after_minutes"`
	// Timezone whose calendar days delimit a price day, default: "Europe/Amsterdam"
	MarketTimezone *string `mapstructure:"market_timezone"`
}

func (p AppConfigPrices) GetRunAt() string {
	if p.RunAt == nil {
		return "0 * * * *"
	}
	return *p.RunAt
}

func (p AppConfigPrices) GetPublicationRunAt() string {
	if p.PublicationRunAt == nil {
		return "*/5 13-15 * * *"
	}
	return *p.PublicationRunAt
}

func (p AppConfigPrices) GetTomorrowAfterHour() int {
	if p.TomorrowAfterHour == nil {
		return 13
	}
	return *p.TomorrowAfterHour
}

func (p AppConfigPrices) GetStaleAfter() time.Duration {
	if p.StaleAfterMinutes == nil {
		return 120 * time.Minute
	}
	return time.Duration(*p.StaleAfterMinutes) * time.Minute
}

func (p AppConfigPrices) GetMarketTimezone() string {
	if p.MarketTimezone == nil {
		return "Europe/Amsterdam"
	}
	return *p.MarketTimezone
}

type AppConfigSensors struct {
	// Keys of the sensors to publish, empty means all of them
	Enabled []string `mapstructure:"enabled"`
}

type AppConfigGui struct {
	// Timezone for displaying times in the GUI, default: UTC
	Timezone *string `mapstructure:"timezone"`
}

func (g AppConfigGui) GetTimezone() string {
	if g.Timezone == nil {
		return "UTC"
	}
	return *g.Timezone
}

type AppConfigLogging struct {
	// Min log level for database : "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	DbLevel *string `mapstructure:"db_level"`
	// Log attributes format: "TEXT", "JSON", default: "JSON"
	DbAttrsFormat *string `mapstructure:"db_attrs_format"`
	// Maximum number of log entries in the database, default: 10000
	DbMaxEntries *int `mapstructure:"db_max_entries"`
	// Min log level for the console: "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	ConsoleLevel *string `mapstructure:"console_level"`
}

func (l AppConfigLogging) GetDbLevel() slog.Level {
	return logging.LevelFromString(l.DbLevel)
}

func (l AppConfigLogging) GetDbAttrsFormat() logging.LogAttrFormat {
	if l.DbAttrsFormat == nil {
		return "JSON"
	}
	if strings.EqualFold(*l.DbAttrsFormat, "text") {
		return "TEXT"
	}
	return "JSON"
}

func (l AppConfigLogging) GetDbMaxEntries() int {
	if l.DbMaxEntries == nil {
		return 10000
	}
	return *l.DbMaxEntries
}

func (l AppConfigLogging) GetConsoleLevel() slog.Level {
	return logging.LevelFromString(l.ConsoleLevel)
}

type AppConfig struct {
	Api      AppConfigApi
	Database AppConfigDatabase
	Mqtt     AppConfigMqtt
	Prices   AppConfigPrices
	Sensors  AppConfigSensors
	Gui      AppConfigGui
	Logging  AppConfigLogging
}

func Load(path string) (*AppConfig, error) {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.AddConfigPath("config")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var c AppConfig

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	if err := viper.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config file: %w", err)
	}

	return &c, nil
}
