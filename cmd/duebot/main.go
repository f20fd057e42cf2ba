package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/duebot/internal/profile"
	"github.com/hrygo/duebot/internal/version"
	"github.com/hrygo/duebot/plugin/duetime"
	"github.com/hrygo/duebot/plugin/ticktick"
	"github.com/hrygo/duebot/server/bot"
	"github.com/hrygo/duebot/server/internal/observability"
	"github.com/hrygo/duebot/server/stats"
	"github.com/hrygo/duebot/server/status"
	"github.com/hrygo/duebot/server/timezone"
	"github.com/hrygo/duebot/store"
	"github.com/hrygo/duebot/store/db"
)

var (
	v = profile.NewViper()

	rootCmd = &cobra.Command{
		Use:           "duebot",
		Short:         "Telegram bot that turns messages into TickTick tasks with an inferred due date",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runBot,
	}
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "config.yaml", "path to the YAML config file")
	flags.String("mode", "demo", `mode of the bot, can be "prod", "dev" or "demo"`)
	flags.String("addr", "", "address of the status server")
	flags.Int("port", 8081, "port of the status server, 0 disables it")
	flags.String("data", "", "data directory")
	flags.String("driver", "sqlite", `journal driver, can be "sqlite", "postgres" or "none"`)
	flags.String("dsn", "", "journal data source name")
	flags.String("timezone", "UTC", "IANA timezone due dates are inferred in")
	flags.String("notify-chat-id", "", "chat that receives a copy of every created task")

	for key, flag := range map[string]string{
		"mode":                    "mode",
		"addr":                    "addr",
		"port":                    "port",
		"data":                    "data",
		"driver":                  "driver",
		"dsn":                     "dsn",
		"app.timezone":            "timezone",
		"telegram.notify_chat_id": "notify-chat-id",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(newInferCmd(), newJournalCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadProfile merges the config file into v and builds an unvalidated profile.
func loadProfile(cmd *cobra.Command) (*profile.Profile, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if err := profile.ReadConfigFile(v, path, cmd.Flags().Changed("config")); err != nil {
		return nil, err
	}
	p := profile.FromViper(v)
	p.Version = version.GetCurrentVersion()
	return p, nil
}

func runBot(cmd *cobra.Command, _ []string) error {
	p, err := loadProfile(cmd)
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	logger := observability.NewLogger(os.Stderr, p.Mode)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var journal *store.Store
	if p.JournalEnabled() {
		journal, err = openJournal(ctx, p)
		if err != nil {
			return err
		}
		defer journal.Close()
	}

	api, err := tgbotapi.NewBotAPI(p.Telegram.BotToken)
	if err != nil {
		return errors.Wrap(err, "failed to authorize on telegram")
	}

	client := ticktick.NewClient(ticktick.Config{
		BaseURL:     p.TickTick.BaseURL,
		AccessToken: p.TickTick.AccessToken,
		Timeout:     p.TickTick.Timeout,
	})

	opts := []bot.Option{
		bot.WithLogger(logger),
		bot.WithClock(timezone.Clock(p.Location)),
	}
	if journal != nil {
		opts = append(opts, bot.WithJournal(journal))
	}
	b := bot.New(api, duetime.NewResolver(duetime.NewWhenSearcher()), client, bot.Config{
		ProjectID:      p.TickTick.ProjectID,
		Location:       p.Location,
		NotifyChatID:   p.Telegram.NotifyChatID,
		UpdateTimeout:  p.Telegram.UpdateTimeout,
		MaxConcurrency: p.Telegram.MaxConcurrency,
		RatePerMinute:  p.Telegram.RatePerMinute,
		CreateTimeout:  p.TickTick.Timeout,
	}, opts...)

	logger.Info("duebot starting",
		slog.String("version", p.Version),
		slog.String("mode", p.Mode),
		slog.String("bot", api.Self.UserName),
		slog.String("timezone", p.Location.String()),
		slog.String("driver", p.Driver),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return b.Run(gctx)
	})
	if p.Port > 0 {
		var (
			collector *stats.Collector
			tasks     status.TaskLister
		)
		if journal != nil {
			collector = stats.NewCollector(journal, stats.DefaultInterval)
			tasks = journal
		}
		srv := status.NewServer(status.Config{Addr: p.Addr, Port: p.Port, Version: p.Version}, b.Metrics(), collector, tasks, logger)
		g.Go(func() error {
			return srv.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("duebot stopped")
	return nil
}

// openJournal connects to the configured database and migrates its schema.
func openJournal(ctx context.Context, p *profile.Profile) (*store.Store, error) {
	driver, err := db.NewDBDriver(p)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	s := store.New(driver, p)
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, errors.Wrap(err, "failed to migrate journal")
	}
	return s, nil
}
