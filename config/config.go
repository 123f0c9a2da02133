package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Booking    BookingConfig    `yaml:"booking"`
	Reminders  ReminderConfig   `yaml:"reminders"`
	Push       PushConfig       `yaml:"push"`
	Mailer     MailerConfig     `yaml:"mailer"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Roster     RosterConfig     `yaml:"roster"`
	Tokens     TokenConfig      `yaml:"tokens"`
	Bootstrap  BootstrapConfig  `yaml:"bootstrap"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// BookingConfig holds the booking rules and the timezone slot times are
// interpreted in.
type BookingConfig struct {
	HorizonDays        int            `yaml:"horizon_days"`
	MaxPerDay          int            `yaml:"max_per_day"`
	WeeklyMachineLimit int            `yaml:"weekly_machine_limit"`
	Timezone           string         `yaml:"timezone"`
	Location           *time.Location `yaml:"-"` // Resolved from Timezone
}

// ReminderConfig holds the configuration for the reminder scanner.
type ReminderConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"` // Ignored by YAML parser
	WindowMinutes   int           `yaml:"window_minutes"`
	Window          time.Duration `yaml:"-"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// MailerConfig holds the settings for the external email delivery API.
type MailerConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	SenderName     string `yaml:"sender_name"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// RosterConfig holds the rules for parsing enrollment roster text.
type RosterConfig struct {
	RollPrefixes []string `yaml:"roll_prefixes"`
	EmailDomain  string   `yaml:"email_domain"`
}

// TokenConfig holds API token issuance settings.
type TokenConfig struct {
	DefaultDays int `yaml:"default_days"`
}

// BootstrapConfig describes the superadmin and building seeded into an empty
// database on first start.
type BootstrapConfig struct {
	AdminUsername string `yaml:"admin_username"`
	AdminEmail    string `yaml:"admin_email"`
	AdminName     string `yaml:"admin_name"`
	BuildingName  string `yaml:"building_name"`
	BuildingCode  string `yaml:"building_code"`
	TokenDays     int    `yaml:"token_days"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Booking.HorizonDays <= 0 {
		cfg.Booking.HorizonDays = 90
	}
	if cfg.Booking.MaxPerDay <= 0 {
		cfg.Booking.MaxPerDay = 1
	}
	if cfg.Booking.WeeklyMachineLimit <= 0 {
		cfg.Booking.WeeklyMachineLimit = 3
	}
	if cfg.Booking.Timezone == "" {
		cfg.Booking.Timezone = "Asia/Kolkata"
	}
	loc, err := time.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid booking.timezone %q: %w", cfg.Booking.Timezone, err)
	}
	cfg.Booking.Location = loc

	if cfg.Reminders.IntervalSeconds <= 0 {
		cfg.Reminders.IntervalSeconds = 3600
	}
	cfg.Reminders.Interval = time.Duration(cfg.Reminders.IntervalSeconds) * time.Second

	if cfg.Reminders.WindowMinutes <= 0 {
		cfg.Reminders.WindowMinutes = 60
	}
	cfg.Reminders.Window = time.Duration(cfg.Reminders.WindowMinutes) * time.Minute

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.Mailer.TimeoutSeconds <= 0 {
		cfg.Mailer.TimeoutSeconds = 15
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	if len(cfg.Roster.RollPrefixes) == 0 {
		cfg.Roster.RollPrefixes = []string{"rs_", "bmat", "mmat", "mlis", "mqms"}
	}
	if cfg.Roster.EmailDomain == "" {
		cfg.Roster.EmailDomain = "isibang.ac.in"
	}

	if cfg.Tokens.DefaultDays <= 0 {
		cfg.Tokens.DefaultDays = 15
	}

	if cfg.Bootstrap.TokenDays <= 0 {
		cfg.Bootstrap.TokenDays = 30
	}

	return &cfg, nil
}
