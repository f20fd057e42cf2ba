package profile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validViperProfile(t *testing.T) *Profile {
	t.Helper()
	v := NewViper()
	v.Set("telegram.bot_token", "123:abc")
	v.Set("ticktick.access_token", "tt-token")
	v.Set("ticktick.project_id", "inbox")
	v.Set("data", t.TempDir())
	return FromViper(v)
}

func TestProfileDefaults(t *testing.T) {
	p := FromViper(NewViper())

	assert.Equal(t, "demo", p.Mode)
	assert.Equal(t, "sqlite", p.Driver)
	assert.Equal(t, 60, p.Telegram.UpdateTimeout)
	assert.Equal(t, 8, p.Telegram.MaxConcurrency)
	assert.Equal(t, 30, p.Telegram.RatePerMinute)
	assert.Equal(t, "https://api.ticktick.com", p.TickTick.BaseURL)
	assert.Equal(t, 10*time.Second, p.TickTick.Timeout)
	assert.Equal(t, "UTC", p.Timezone)
}

func TestValidate_ReportsAllMissingKeys(t *testing.T) {
	p := FromViper(NewViper())

	err := p.Validate()
	require.Error(t, err)
	assert.Equal(t,
		"missing required config values: telegram.bot_token, ticktick.access_token, ticktick.project_id",
		err.Error())
}

func TestValidate_PartialMissing(t *testing.T) {
	v := NewViper()
	v.Set("telegram.bot_token", "123:abc")
	v.Set("ticktick.access_token", "  ")

	err := FromViper(v).Validate()
	require.Error(t, err)
	assert.Equal(t, "missing required config values: ticktick.access_token, ticktick.project_id", err.Error())
}

func TestValidate_Success(t *testing.T) {
	p := validViperProfile(t)
	p.Timezone = "Europe/Moscow"

	require.NoError(t, p.Validate())
	assert.Equal(t, "Europe/Moscow", p.Location.String())
	assert.Equal(t, filepath.Join(p.Data, "duebot_demo.db"), p.DSN)
	assert.Zero(t, p.Telegram.NotifyChatID)
	assert.True(t, p.JournalEnabled())
}

func TestValidate_Timezone(t *testing.T) {
	p := validViperProfile(t)
	p.Timezone = "Mars/Olympus"

	err := p.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app.timezone")
}

func TestValidate_NotifyChatID(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		want    int64
		wantErr bool
	}{
		{"negative group id", "-1001234567890", -1001234567890, false},
		{"yaml integer", 42, 42, false},
		{"not a number", "team-chat", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewViper()
			v.Set("telegram.bot_token", "123:abc")
			v.Set("ticktick.access_token", "tt-token")
			v.Set("ticktick.project_id", "inbox")
			v.Set("driver", "none")
			v.Set("telegram.notify_chat_id", tt.raw)

			p := FromViper(v)
			err := p.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "telegram.notify_chat_id")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Telegram.NotifyChatID)
		})
	}
}

func TestValidate_ModeAndDriver(t *testing.T) {
	p := validViperProfile(t)
	p.Mode = " DEV "
	require.NoError(t, p.Validate())
	assert.Equal(t, "dev", p.Mode)
	assert.True(t, p.IsDev())

	p = validViperProfile(t)
	p.Mode = "staging"
	require.NoError(t, p.Validate())
	assert.Equal(t, "demo", p.Mode)

	p = validViperProfile(t)
	p.Driver = "mysql"
	assert.ErrorContains(t, p.Validate(), "unsupported driver")

	p = validViperProfile(t)
	p.Driver = "postgres"
	assert.ErrorContains(t, p.Validate(), "dsn is required")
}

func TestValidate_MissingDataDir(t *testing.T) {
	p := validViperProfile(t)
	p.Data = filepath.Join(t.TempDir(), "does-not-exist")

	err := p.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to access data folder")
}

func TestValidateSettings_SkipsCredentials(t *testing.T) {
	p := FromViper(NewViper())
	p.Timezone = "Europe/Moscow"

	require.NoError(t, p.ValidateSettings())
	assert.Equal(t, "Europe/Moscow", p.Location.String())
}

func TestValidateStorage_ResolvesDSNWithoutCredentials(t *testing.T) {
	v := NewViper()
	dir := t.TempDir()
	v.Set("data", dir)
	p := FromViper(v)

	require.NoError(t, p.ValidateStorage())
	assert.Equal(t, filepath.Join(dir, "duebot_demo.db"), p.DSN)
}

func TestNewViper_Env(t *testing.T) {
	t.Setenv("DUEBOT_TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("DUEBOT_TICKTICK_PROJECT_ID", "env-project")
	t.Setenv("DUEBOT_APP_TIMEZONE", "Europe/Moscow")
	t.Setenv("DUEBOT_TELEGRAM_RATE_PER_MINUTE", "12")

	p := FromViper(NewViper())
	assert.Equal(t, "env-token", p.Telegram.BotToken)
	assert.Equal(t, "env-project", p.TickTick.ProjectID)
	assert.Equal(t, "Europe/Moscow", p.Timezone)
	assert.Equal(t, 12, p.Telegram.RatePerMinute)
}

func TestReadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
mode: prod
driver: none
telegram:
  bot_token: "file-token"
  notify_chat_id: -100500
ticktick:
  access_token: "file-access"
  project_id: "file-project"
  timeout: 3s
app:
  timezone: Europe/Moscow
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	v := NewViper()
	require.NoError(t, ReadConfigFile(v, path, true))

	p := FromViper(v)
	require.NoError(t, p.Validate())
	assert.Equal(t, "prod", p.Mode)
	assert.Equal(t, "file-token", p.Telegram.BotToken)
	assert.Equal(t, int64(-100500), p.Telegram.NotifyChatID)
	assert.Equal(t, 3*time.Second, p.TickTick.Timeout)
	assert.Equal(t, "Europe/Moscow", p.Location.String())
	assert.False(t, p.JournalEnabled())
}

func TestReadConfigFile_Missing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.yaml")

	assert.NoError(t, ReadConfigFile(NewViper(), missing, false))
	assert.Error(t, ReadConfigFile(NewViper(), missing, true))
	assert.NoError(t, ReadConfigFile(NewViper(), "", true))
}
