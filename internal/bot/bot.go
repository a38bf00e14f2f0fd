package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shiftline/smena-bot/internal/metrics"
	"github.com/shiftline/smena-bot/internal/models"
	"github.com/shiftline/smena-bot/internal/repository"
	"github.com/shiftline/smena-bot/internal/tracker"
	"gopkg.in/telebot.v4"
)

// Tracker is the slice of the shift state machine the bot drives.
type Tracker interface {
	StartShift(ctx context.Context, telegramID int64) (string, error)
	LunchStart(ctx context.Context, telegramID int64) error
	LunchEnd(ctx context.Context, telegramID int64) error
	SubmitReport(ctx context.Context, telegramID int64, report tracker.ReportInput) error
	RecordAbsence(ctx context.Context, telegramID int64, reason string) error
	RedeemInvite(ctx context.Context, telegramID int64, code, fullName string) (*models.Employee, error)
}

// Bot contains the bot API instance and other information.
type Bot struct {
	bot        *telebot.Bot
	log        *slog.Logger
	tracker    Tracker
	emrepo     repository.EmployeeManager
	shrepo     repository.ShiftManager
	metrics    *metrics.Metrics
	pendingTTL time.Duration
	loc        *time.Location
}

// NewBot creates a new bot with the given token and registers the
// command and callback routes.
func NewBot(
	log *slog.Logger,
	trk Tracker,
	emrepo repository.EmployeeManager,
	shrepo repository.ShiftManager,
	appMetrics *metrics.Metrics,
	token string,
	poller time.Duration,
	pendingTTL time.Duration,
	loc *time.Location,
) (*Bot, error) {
	bot, err := telebot.NewBot(telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: poller},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	log.Info("Authorized on account", "account", bot.Me.Username)

	botInstance := &Bot{
		bot:        bot,
		log:        log,
		tracker:    trk,
		emrepo:     emrepo,
		shrepo:     shrepo,
		metrics:    appMetrics,
		pendingTTL: pendingTTL,
		loc:        loc,
	}

	botInstance.registerRoutes()

	return botInstance, nil
}

// Start launches the long poller. Only used for local runs; in webhook
// mode updates arrive through ProcessUpdate instead.
func (b *Bot) Start() {
	b.log.Info("Telegram bot is starting...")
	b.bot.Start()
}

// Stop gracefully stops the Telegram bot and logs the action.
func (b *Bot) Stop() {
	b.log.Info("Telegram bot is stopped...")
	b.bot.Stop()
}

// ProcessUpdate feeds one webhook update into the router.
func (b *Bot) ProcessUpdate(update telebot.Update) {
	b.bot.ProcessUpdate(update)
}

// Send delivers a text message with an optional inline keyboard to the
// given chat. It implements the reminder dispatcher's Messenger.
func (b *Bot) Send(chatID int64, text string, markup *telebot.ReplyMarkup) error {
	recipient := &telebot.User{ID: chatID}

	var err error
	if markup != nil {
		_, err = b.bot.Send(recipient, text, markup)
	} else {
		_, err = b.bot.Send(recipient, text)
	}
	if err != nil {
		b.metrics.SentMessages.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
	}

	b.metrics.SentMessages.WithLabelValues("text").Inc()
	return nil
}

// registerRoutes configures all routes (commands and callbacks). The
// callback set is closed: every action token the dispatcher or the main
// menu can emit has exactly one handler here.
func (b *Bot) registerRoutes() {
	b.bot.Handle("/start", b.startHandler)
	b.bot.Handle("/help", b.helpHandler)
	b.bot.Handle("/timesheet", b.timesheetHandler)
	b.bot.Handle(telebot.OnText, b.textHandler)

	// Inline button callbacks
	b.bot.Handle("\fstart_shift", b.startShiftHandler)
	b.bot.Handle("\flunch_start", b.lunchStartHandler)
	b.bot.Handle("\flunch_end", b.lunchEndHandler)
	b.bot.Handle("\ffinish_shift", b.finishShiftHandler)
	b.bot.Handle("\fabsent_today", b.absentTodayHandler)
	b.bot.Handle("\flate_start", b.lateStartHandler)
	b.bot.Handle("\fopen_webapp", b.openWebappHandler)
}
