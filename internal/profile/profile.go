package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/hrygo/duebot/server/timezone"
)

// EnvPrefix prefixes every environment variable read into the profile.
const EnvPrefix = "DUEBOT"

// Profile is the configuration to start the bot.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for the status server
	Addr string
	// Port is the binding port for the status server; 0 disables it
	Port int
	// Data is the data directory
	Data string
	// Driver is the journal driver (sqlite, postgres or none)
	Driver string
	// DSN points to where the task journal is stored
	DSN string
	// Version is the current version of the bot
	Version string

	Telegram TelegramConfig
	TickTick TickTickConfig

	// Timezone is the IANA zone due dates are inferred in
	Timezone string
	// Location is Timezone resolved by Validate
	Location *time.Location
}

// TelegramConfig holds chat transport settings.
type TelegramConfig struct {
	BotToken      string
	UpdateTimeout int // seconds
	// NotifyChatID receives a copy of every created task; 0 disables it
	NotifyChatID   int64
	MaxConcurrency int
	RatePerMinute  int

	notifyChatIDRaw string
}

// TickTickConfig holds task API settings.
type TickTickConfig struct {
	AccessToken string
	ProjectID   string
	BaseURL     string
	Timeout     time.Duration
}

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("mode", "demo")
	v.SetDefault("addr", "")
	v.SetDefault("port", 8081)
	v.SetDefault("data", "")
	v.SetDefault("driver", "sqlite")
	v.SetDefault("dsn", "")
	v.SetDefault("telegram.update_timeout", 60)
	v.SetDefault("telegram.max_concurrency", 8)
	v.SetDefault("telegram.rate_per_minute", 30)
	v.SetDefault("ticktick.base_url", "https://api.ticktick.com")
	v.SetDefault("ticktick.timeout", "10s")
	v.SetDefault("app.timezone", timezone.TimezoneUTC)
}

// NewViper returns a viper instance with defaults and DUEBOT_* environment
// binding. Nested keys map to variables with dots replaced by underscores,
// e.g. telegram.bot_token -> DUEBOT_TELEGRAM_BOT_TOKEN.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only sees keys viper already knows.
	for _, key := range []string{"telegram.bot_token", "telegram.notify_chat_id", "ticktick.access_token", "ticktick.project_id"} {
		_ = v.BindEnv(key)
	}
	return v
}

// ReadConfigFile merges the YAML file at path into v. A missing file is not
// an error unless required is set.
func ReadConfigFile(v *viper.Viper, path string, required bool) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return errors.Wrapf(err, "unable to access config file %s", path)
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}
	return nil
}

// FromViper builds a Profile from v. Call Validate before use.
func FromViper(v *viper.Viper) *Profile {
	return &Profile{
		Mode:   v.GetString("mode"),
		Addr:   v.GetString("addr"),
		Port:   v.GetInt("port"),
		Data:   v.GetString("data"),
		Driver: v.GetString("driver"),
		DSN:    v.GetString("dsn"),
		Telegram: TelegramConfig{
			BotToken:        strings.TrimSpace(v.GetString("telegram.bot_token")),
			UpdateTimeout:   v.GetInt("telegram.update_timeout"),
			MaxConcurrency:  v.GetInt("telegram.max_concurrency"),
			RatePerMinute:   v.GetInt("telegram.rate_per_minute"),
			notifyChatIDRaw: strings.TrimSpace(v.GetString("telegram.notify_chat_id")),
		},
		TickTick: TickTickConfig{
			AccessToken: strings.TrimSpace(v.GetString("ticktick.access_token")),
			ProjectID:   strings.TrimSpace(v.GetString("ticktick.project_id")),
			BaseURL:     v.GetString("ticktick.base_url"),
			Timeout:     v.GetDuration("ticktick.timeout"),
		},
		Timezone: v.GetString("app.timezone"),
	}
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// JournalEnabled reports whether task records are persisted.
func (p *Profile) JournalEnabled() bool {
	return p.Driver != "none"
}

// MissingRequired lists the required keys that are unset, in a stable order.
func (p *Profile) MissingRequired() []string {
	var missing []string
	if p.Telegram.BotToken == "" {
		missing = append(missing, "telegram.bot_token")
	}
	if p.TickTick.AccessToken == "" {
		missing = append(missing, "ticktick.access_token")
	}
	if p.TickTick.ProjectID == "" {
		missing = append(missing, "ticktick.project_id")
	}
	return missing
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

// ValidateSettings checks everything except the required credentials. It is
// enough for offline commands that never talk to Telegram or TickTick.
func (p *Profile) ValidateSettings() error {
	p.Mode = strings.ToLower(strings.TrimSpace(p.Mode))
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	loc, err := timezone.ParseTimezone(p.Timezone)
	if err != nil {
		return errors.Wrap(err, "app.timezone")
	}
	p.Location = loc

	if raw := p.Telegram.notifyChatIDRaw; raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return errors.Errorf("telegram.notify_chat_id must be an integer, got %q", raw)
		}
		p.Telegram.NotifyChatID = id
	}

	if p.Telegram.UpdateTimeout <= 0 {
		p.Telegram.UpdateTimeout = 60
	}
	if p.Telegram.MaxConcurrency <= 0 {
		p.Telegram.MaxConcurrency = 8
	}
	if p.Port < 0 {
		return errors.Errorf("port must not be negative, got %d", p.Port)
	}

	switch p.Driver {
	case "sqlite", "postgres", "none":
	default:
		return errors.Errorf("unsupported driver %q", p.Driver)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("dsn is required for the postgres driver")
	}
	return nil
}

// Validate checks the whole profile: every missing required key is reported
// in a single error, then the remaining settings are normalised.
func (p *Profile) Validate() error {
	if missing := p.MissingRequired(); len(missing) > 0 {
		return errors.Errorf("missing required config values: %s", strings.Join(missing, ", "))
	}
	return p.ValidateStorage()
}

// ValidateStorage runs ValidateSettings and resolves the data directory and
// default DSN, without requiring credentials.
func (p *Profile) ValidateStorage() error {
	if err := p.ValidateSettings(); err != nil {
		return err
	}
	return p.resolveData()
}

func (p *Profile) resolveData() error {
	if p.Driver != "sqlite" {
		return nil
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "duebot")
		} else {
			p.Data = "/var/opt/duebot"
		}
		if _, err := os.Stat(p.Data); os.IsNotExist(err) {
			if err := os.MkdirAll(p.Data, 0770); err != nil {
				slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
				return err
			}
		}
	}
	if p.Data == "" {
		p.Data = "."
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.DSN == "" {
		p.DSN = filepath.Join(dataDir, fmt.Sprintf("duebot_%s.db", p.Mode))
	}
	return nil
}
