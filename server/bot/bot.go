// Package bot turns Telegram messages into TickTick tasks.
package bot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/semaphore"

	"github.com/hrygo/duebot/plugin/duetime"
	"github.com/hrygo/duebot/plugin/ticktick"
	boterrors "github.com/hrygo/duebot/server/internal/errors"
	"github.com/hrygo/duebot/server/internal/observability"
	"github.com/hrygo/duebot/server/middleware"
	"github.com/hrygo/duebot/store"
)

// API is the part of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Journal persists task creation attempts.
type Journal interface {
	CreateTaskRecord(ctx context.Context, create *store.TaskRecord) (*store.TaskRecord, error)
}

// Config holds bot behaviour settings.
type Config struct {
	ProjectID string
	// Location is the zone due dates are inferred in.
	Location *time.Location
	// NotifyChatID receives a copy of every created task; 0 disables it.
	NotifyChatID   int64
	UpdateTimeout  int
	MaxConcurrency int
	RatePerMinute  int
	// CreateTimeout bounds one TickTick call.
	CreateTimeout time.Duration
}

// Bot handles chat updates.
type Bot struct {
	api      API
	resolver duetime.DueService
	tasks    ticktick.TaskCreator
	journal  Journal
	limiter  *middleware.RateLimiter
	metrics  *observability.Metrics
	sem      *semaphore.Weighted
	config   Config
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Bot.
type Option func(*Bot)

// WithJournal records every task creation attempt in j.
func WithJournal(j Journal) Option {
	return func(b *Bot) {
		b.journal = j
	}
}

// WithMetrics sets the counters the bot updates.
func WithMetrics(m *observability.Metrics) Option {
	return func(b *Bot) {
		b.metrics = m
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(b *Bot) {
		b.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) {
		b.logger = logger
	}
}

// New creates a new Bot.
func New(api API, resolver duetime.DueService, tasks ticktick.TaskCreator, config Config, opts ...Option) *Bot {
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 8
	}
	if config.UpdateTimeout <= 0 {
		config.UpdateTimeout = 60
	}
	if config.CreateTimeout <= 0 {
		config.CreateTimeout = ticktick.DefaultTimeout
	}

	b := &Bot{
		api:      api,
		resolver: resolver,
		tasks:    tasks,
		limiter:  middleware.NewRateLimiter(config.RatePerMinute),
		metrics:  observability.NewMetrics(),
		sem:      semaphore.NewWeighted(int64(config.MaxConcurrency)),
		config:   config,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Metrics returns the bot's counters.
func (b *Bot) Metrics() *observability.Metrics {
	return b.metrics
}

// Run long-polls for updates until ctx is canceled, handling each message in
// its own goroutine. It returns after in-flight handlers finish.
func (b *Bot) Run(ctx context.Context) error {
	if b.config.ProjectID == "" {
		return boterrors.ConfigInvalid("ticktick project id is empty")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.config.UpdateTimeout
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	// Handlers outlive cancellation of the poll loop; each TickTick call has its own timeout.
	handlerCtx := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	defer wg.Wait()

	b.logger.Info("bot started", slog.Int("max_concurrency", b.config.MaxConcurrency))
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("bot stopping", slog.String("reason", ctx.Err().Error()))
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			if err := b.sem.Acquire(ctx, 1); err != nil {
				return nil
			}

			wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer wg.Done()
				defer b.sem.Release(1)
				b.HandleMessage(handlerCtx, msg)
			}(update.Message)
		}
	}
}
