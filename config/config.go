package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds the configuration settings for the application.
// It includes the environment type, database configuration, the bot
// token, the HTTP server port and the scheduler tuning knobs.
type Config struct {
	Env       string          `yaml:"env"`       // Env is the current environment: local, dev, prod.
	Database  PostgresConfig  `yaml:"postgres"`  // Database holds the postgres database configuration
	Telegram  TelegramConfig  `yaml:"telegram"`  // Telegram holds the bot settings
	Scheduler SchedulerConfig `yaml:"scheduler"` // Scheduler holds the reminder pipeline settings
	Port      int             `yaml:"port"`      // Port is the HTTP server port
	Timezone  string          `yaml:"timezone"`  // Timezone is the company default IANA timezone
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `yaml:"host"`      // Host is the database server address.
	Port     string `yaml:"port"`      // Port is the database server port.
	User     string `yaml:"user"`      // User is the database user.
	Password string `yaml:"password"`  // Password is the database user's password.
	Name     string `yaml:"db_name"`   // Name is the name of the database.
	SSLMode  string `yaml:"ssl_mode"`  // SSLMode is the libpq sslmode value, disable for local runs.
	MinConns int32  `yaml:"min_conns"` // MinConns is the number of connections the pool keeps warm.
	MaxConns int32  `yaml:"max_conns"` // MaxConns caps the pool size.
}

// TelegramConfig holds the bot token and the update delivery mode.
type TelegramConfig struct {
	Token         string        `yaml:"token"`          // Token is the unique telegram bot token
	UseWebhook    bool          `yaml:"use_webhook"`    // UseWebhook selects webhook delivery over long polling
	PollerTimeout time.Duration `yaml:"poller_timeout"` // PollerTimeout is the long poller timeout for local runs
}

// SchedulerConfig holds the tuning knobs of the reminder pipeline.
// Defaults match the external cron contract: the tick is triggered every
// few minutes by a single non-overlapping scheduler.
type SchedulerConfig struct {
	GenerateLookahead time.Duration `yaml:"generate_lookahead"` // How far ahead reminders are created
	DispatchLookahead time.Duration `yaml:"dispatch_lookahead"` // Window of reminders picked up per tick
	ReportGrace       time.Duration `yaml:"report_grace"`       // Grace period before a missing report is flagged
	BatchSize         int           `yaml:"batch_size"`         // Messages sent per delivery batch
	BatchDelay        time.Duration `yaml:"batch_delay"`        // Pause between delivery batches
	PendingTTL        time.Duration `yaml:"pending_ttl"`        // Lifetime of a pending reply prompt
}

// MustLoad loads the configuration from a YAML file and returns a Config struct.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		panic("config path is empty")
	}

	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	viper.SetConfigFile(configPath)
	if err := viper.ReadInConfig(); err != nil {
		panic("config error: " + err.Error())
	}

	viper.SetDefault("postgres.port", "5432")
	viper.SetDefault("postgres.ssl_mode", "disable")
	viper.SetDefault("postgres.min_conns", 3)
	viper.SetDefault("postgres.max_conns", 10)
	viper.SetDefault("telegram.poller_timeout", 10*time.Second)
	viper.SetDefault("port", 8080)
	viper.SetDefault("timezone", "Europe/Amsterdam")
	viper.SetDefault("scheduler.generate_lookahead", 24*time.Hour)
	viper.SetDefault("scheduler.dispatch_lookahead", 10*time.Minute)
	viper.SetDefault("scheduler.report_grace", 2*time.Hour)
	viper.SetDefault("scheduler.batch_size", 25)
	viper.SetDefault("scheduler.batch_delay", 250*time.Millisecond)
	viper.SetDefault("scheduler.pending_ttl", time.Hour)

	return &Config{
		Env:      viper.GetString("env"),
		Port:     viper.GetInt("port"),
		Timezone: viper.GetString("timezone"),
		Telegram: TelegramConfig{
			Token:         viper.GetString("telegram.token"),
			UseWebhook:    viper.GetBool("telegram.use_webhook"),
			PollerTimeout: viper.GetDuration("telegram.poller_timeout"),
		},
		Database: PostgresConfig{
			Host:     viper.GetString("postgres.host"),
			Port:     viper.GetString("postgres.port"),
			User:     viper.GetString("postgres.user"),
			Password: viper.GetString("postgres.password"),
			Name:     viper.GetString("postgres.db_name"),
			SSLMode:  viper.GetString("postgres.ssl_mode"),
			MinConns: viper.GetInt32("postgres.min_conns"),
			MaxConns: viper.GetInt32("postgres.max_conns"),
		},
		Scheduler: SchedulerConfig{
			GenerateLookahead: viper.GetDuration("scheduler.generate_lookahead"),
			DispatchLookahead: viper.GetDuration("scheduler.dispatch_lookahead"),
			ReportGrace:       viper.GetDuration("scheduler.report_grace"),
			BatchSize:         viper.GetInt("scheduler.batch_size"),
			BatchDelay:        viper.GetDuration("scheduler.batch_delay"),
			PendingTTL:        viper.GetDuration("scheduler.pending_ttl"),
		},
	}
}
