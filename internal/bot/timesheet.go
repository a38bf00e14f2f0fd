package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shiftline/smena-bot/internal/report"
	"github.com/shiftline/smena-bot/internal/repository"
	"gopkg.in/telebot.v4"
)

const timesheetSpan = 7 * 24 * time.Hour

// timesheetHandler processes the /timesheet command: it exports the
// employee's shifts for the past week as an Excel file.
func (b *Bot) timesheetHandler(ctx telebot.Context) error {
	b.metrics.CommandReceived.WithLabelValues("/timesheet").Inc()
	userID := ctx.Sender().ID

	timeoutCtx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	emp, err := b.emrepo.GetEmployeeByTelegramID(timeoutCtx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return ctx.Send(msgNotRegistered)
		}
		b.log.Error("Failed to look up employee", "id", userID, "error", err)
		return ctx.Send(msgInternalError)
	}

	now := time.Now().In(b.loc)
	summaries, err := b.shrepo.ListShiftSummaries(timeoutCtx, emp.ID, now.Add(-timesheetSpan), now)
	if err != nil {
		b.log.Error("Failed to list shift summaries", "id", userID, "error", err)
		return ctx.Send(msgInternalError)
	}

	buf, err := report.GenerateTimesheet(summaries, b.loc)
	if err != nil {
		if errors.Is(err, report.ErrNoShifts) {
			return ctx.Send("За последнюю неделю смен не найдено.")
		}
		b.log.Error("Failed to generate timesheet", "id", userID, "error", err)
		return ctx.Send(msgInternalError)
	}

	doc := &telebot.Document{
		File:     telebot.FromReader(buf),
		FileName: fmt.Sprintf("timesheet_%s.xlsx", now.Format("2006-01-02")),
	}
	if err = ctx.Send(doc); err != nil {
		return fmt.Errorf("failed to send timesheet: %w", err)
	}
	b.metrics.SentMessages.WithLabelValues("document").Inc()
	return nil
}

// lateStartHandler acknowledges the "running late" reply to a shift
// reminder. The shift stays planned until the employee starts it.
func (b *Bot) lateStartHandler(ctx telebot.Context) error {
	b.metrics.CommandReceived.WithLabelValues("late_start").Inc()
	_ = ctx.Respond()
	b.log.Info("Employee reported a late start", "id", ctx.Sender().ID)
	return ctx.Send("Хорошо, учли. Не забудьте начать смену, когда придете.")
}

// openWebappHandler points the employee at the mini app entry.
func (b *Bot) openWebappHandler(ctx telebot.Context) error {
	b.metrics.CommandReceived.WithLabelValues("open_webapp").Inc()
	_ = ctx.Respond()
	return ctx.Send("Откройте приложение через кнопку меню бота.")
}
