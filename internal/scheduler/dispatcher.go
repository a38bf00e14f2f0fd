package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shiftline/smena-bot/internal/metrics"
	"github.com/shiftline/smena-bot/internal/models"
	"github.com/shiftline/smena-bot/internal/repository"
	"gopkg.in/telebot.v4"
)

// Messenger delivers one message with an optional inline keyboard to a
// Telegram chat. Implemented by the bot.
type Messenger interface {
	Send(chatID int64, text string, markup *telebot.ReplyMarkup) error
}

// Dispatcher selects due unsent reminders, renders the per-type message
// and keyboard, and delivers them in rate-limited batches. Delivery is
// best-effort: after the attempt every selected reminder is marked sent
// in one bulk update, whether or not each message went through. A failed
// send is therefore never retried.
type Dispatcher struct {
	store      repository.ReminderManager
	messenger  Messenger
	log        *slog.Logger
	metrics    *metrics.Metrics
	lookahead  time.Duration
	batchSize  int
	batchDelay time.Duration
}

// NewDispatcher creates a reminder dispatcher. lookahead is the window
// of planned instants picked up per run; batchSize and batchDelay
// throttle delivery to respect the provider rate limit.
func NewDispatcher(
	log *slog.Logger,
	store repository.ReminderManager,
	messenger Messenger,
	appMetrics *metrics.Metrics,
	lookahead time.Duration,
	batchSize int,
	batchDelay time.Duration,
) *Dispatcher {
	return &Dispatcher{
		store:      store,
		messenger:  messenger,
		log:        log,
		metrics:    appMetrics,
		lookahead:  lookahead,
		batchSize:  batchSize,
		batchDelay: batchDelay,
	}
}

type outgoing struct {
	chatID int64
	kind   string
	text   string
	markup *telebot.ReplyMarkup
}

// Run dispatches every unsent reminder planned inside [now, now+lookahead].
func (d *Dispatcher) Run(ctx context.Context, now time.Time) error {
	reminders, err := d.store.ListDueReminders(ctx, now, now.Add(d.lookahead))
	if err != nil {
		return fmt.Errorf("failed to list due reminders: %w", err)
	}
	if len(reminders) == 0 {
		return nil
	}

	var messages []outgoing
	ids := make([]string, 0, len(reminders))
	for _, reminder := range reminders {
		ids = append(ids, reminder.ID)

		if reminder.TelegramID == 0 {
			continue
		}
		text, markup, known := renderReminder(reminder.Type)
		if !known {
			d.log.WarnContext(ctx, "Skipping reminder of unknown type", "id", reminder.ID, "type", reminder.Type)
			continue
		}

		messages = append(messages, outgoing{chatID: reminder.TelegramID, kind: reminder.Type, text: text, markup: markup})
	}

	d.deliver(ctx, messages)

	// One bulk update for the whole selection, regardless of individual
	// delivery outcome: at-most-once dispatch attempt per reminder.
	if err = d.store.MarkRemindersSent(ctx, ids, time.Now()); err != nil {
		return fmt.Errorf("failed to mark reminders as sent: %w", err)
	}

	return nil
}

// deliver sends the messages in batches. Sends inside a batch run
// concurrently with no ordering guarantee; batches are strictly
// sequential with a fixed pause between them.
func (d *Dispatcher) deliver(ctx context.Context, messages []outgoing) {
	for start := 0; start < len(messages); start += d.batchSize {
		end := min(start+d.batchSize, len(messages))

		var wg sync.WaitGroup
		for _, msg := range messages[start:end] {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := d.messenger.Send(msg.chatID, msg.text, msg.markup); err != nil {
					d.log.ErrorContext(ctx, "Failed to deliver reminder", "chat", msg.chatID, "error", err)
					return
				}
				d.metrics.RemindersSent.WithLabelValues(msg.kind).Inc()
			}()
		}
		wg.Wait()

		if end < len(messages) {
			time.Sleep(d.batchDelay)
		}
	}
}

// renderReminder maps a reminder type to its fixed message text and
// action keyboard. The third return value is false for types the
// dispatcher does not deliver.
func renderReminder(reminderType string) (string, *telebot.ReplyMarkup, bool) {
	markup := &telebot.ReplyMarkup{}

	switch reminderType {
	case models.ReminderPreStart:
		markup.Inline(markup.Row(
			markup.Data("Открыть", "open_webapp"),
			markup.Data("Я опоздаю", "late_start"),
		))
		return "Через 10 минут старт вашей смены. Открыть форму плана?", markup, true
	case models.ReminderLunchStart:
		markup.Inline(markup.Row(markup.Data("Начать обед", "lunch_start")))
		return "Пора на обед.", markup, true
	case models.ReminderLunchEnd:
		markup.Inline(markup.Row(markup.Data("Закончить обед", "lunch_end")))
		return "Возвращаемся к работе.", markup, true
	case models.ReminderPreEnd:
		markup.Inline(markup.Row(markup.Data("Открыть", "open_webapp")))
		return "Через 10 минут конец смены. Заполнить краткий отчёт?", markup, true
	default:
		return "", nil, false
	}
}
