package bot

import (
	"context"
	"errors"
	"time"

	"github.com/shiftline/smena-bot/internal/models"
	"github.com/shiftline/smena-bot/internal/repository"
	"github.com/shiftline/smena-bot/internal/tracker"
	"gopkg.in/telebot.v4"
)

// opTimeout bounds every store call made from a handler.
const opTimeout = 5 * time.Second

const (
	msgWelcome       = "Добро пожаловать в систему учета рабочего времени!"
	msgJoined        = "✅ Вы успешно присоединились к компании.\nС завтрашнего дня вы будете получать уведомления о начале смены."
	msgNotRegistered = "⛔ Вы не привязаны ни к одной компании.\nПолучите пригласительную ссылку от вашего руководителя."
	msgNoEmployee    = "Сотрудник не найден. Обратитесь к администратору."
	msgNoShift       = "Смена не найдена. Начните смену сначала."
	msgShiftExists   = "Смена уже начата сегодня!"
	msgShiftStarted  = "Смена начата! Удачного дня!"
	msgLunchStarted  = "Приятного аппетита! Перерыв начат."
	msgLunchEnded    = "Отлично! Возвращаемся к работе."
	msgAskReport     = "Что вы сделали сегодня? Были ли проблемы?"
	msgAskAbsence    = "Укажите причину отсутствия:"
	msgReportSaved   = "Смена завершена! Спасибо за отчет."
	msgAbsenceSaved  = "Причина отсутствия сохранена."
	msgUseButtons    = "Используйте кнопки меню или команду /start."
	msgInternalError = "Произошла ошибка. Попробуйте еще раз."
)

// startHandler processes the /start command. An invite code in the
// payload is redeemed first; a registered employee gets the main menu.
func (b *Bot) startHandler(ctx telebot.Context) error {
	b.metrics.CommandReceived.WithLabelValues("/start").Inc()
	userID := ctx.Sender().ID
	b.log.Info("User started the bot", "id", userID, "username", ctx.Sender().Username)

	timeoutCtx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if code := ctx.Message().Payload; code != "" {
		_, err := b.tracker.RedeemInvite(timeoutCtx, userID, code, ctx.Sender().FirstName)
		switch {
		case err == nil:
			return ctx.Send(msgJoined)
		case errors.Is(err, repository.ErrInviteNotFound):
			b.log.Info("Invalid or expired invite", "id", userID, "code", code)
		default:
			b.log.Error("Failed to redeem invite", "id", userID, "error", err)
			return ctx.Send(msgInternalError)
		}
	}

	_, err := b.emrepo.GetEmployeeByTelegramID(timeoutCtx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return ctx.Send(msgNotRegistered)
		}
		b.log.Error("Failed to look up employee", "id", userID, "error", err)
		return ctx.Send(msgInternalError)
	}

	return ctx.Send(msgWelcome, mainMenu())
}

// helpHandler processes the /help command.
func (b *Bot) helpHandler(ctx telebot.Context) error {
	b.metrics.CommandReceived.WithLabelValues("/help").Inc()
	return ctx.Send(
		"Команды бота:\n" +
			"/start - Главное меню\n" +
			"/timesheet - Табель за неделю\n" +
			"/help - Помощь\n\n" +
			"Используйте кнопки для управления сменами.",
	)
}

// startShiftHandler processes the start_shift callback. Starting is
// idempotent per calendar day.
func (b *Bot) startShiftHandler(ctx telebot.Context) error {
	b.metrics.CommandReceived.WithLabelValues("start_shift").Inc()
	_ = ctx.Respond()

	timeoutCtx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := b.tracker.StartShift(timeoutCtx, ctx.Sender().ID)
	switch {
	case err == nil:
		return ctx.Send(msgShiftStarted)
	case errors.Is(err, tracker.ErrShiftExists):
		return ctx.Send(msgShiftExists)
	case errors.Is(err, repository.ErrEmployeeNotFound):
		return ctx.Send(msgNoEmployee)
	default:
		b.log.Error("Failed to start shift", "id", ctx.Sender().ID, "error", err)
		return ctx.Send(msgInternalError)
	}
}

// lunchStartHandler processes the lunch_start callback.
func (b *Bot) lunchStartHandler(ctx telebot.Context) error {
	b.metrics.CommandReceived.WithLabelValues("lunch_start").Inc()
	_ = ctx.Respond()

	timeoutCtx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	err := b.tracker.LunchStart(timeoutCtx, ctx.Sender().ID)
	if err != nil {
		return b.replyShiftError(ctx, "lunch start", err)
	}
	return ctx.Send(msgLunchStarted)
}

// lunchEndHandler processes the lunch_end callback.
func (b *Bot) lunchEndHandler(ctx telebot.Context) error {
	b.metrics.CommandReceived.WithLabelValues("lunch_end").Inc()
	_ = ctx.Respond()

	timeoutCtx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	err := b.tracker.LunchEnd(timeoutCtx, ctx.Sender().ID)
	if err != nil {
		return b.replyShiftError(ctx, "lunch end", err)
	}
	return ctx.Send(msgLunchEnded)
}

// finishShiftHandler processes the finish_shift callback: it prompts
// for the end-of-day report and records a pending reply so the answer
// can be correlated by any bot instance.
func (b *Bot) finishShiftHandler(ctx telebot.Context) error {
	b.metrics.CommandReceived.WithLabelValues("finish_shift").Inc()
	_ = ctx.Respond()
	userID := ctx.Sender().ID

	timeoutCtx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	emp, err := b.emrepo.GetEmployeeByTelegramID(timeoutCtx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return ctx.Send(msgNoEmployee)
		}
		b.log.Error("Failed to look up employee", "id", userID, "error", err)
		return ctx.Send(msgInternalError)
	}

	shiftID, err := b.shrepo.FindActiveShift(timeoutCtx, emp.ID)
	if err != nil {
		if errors.Is(err, repository.ErrActiveShiftNotFound) {
			return ctx.Send(msgNoShift)
		}
		b.log.Error("Failed to find active shift", "id", userID, "error", err)
		return ctx.Send(msgInternalError)
	}

	err = b.emrepo.SetPendingAction(timeoutCtx, models.PendingAction{
		EmployeeID: emp.ID,
		Kind:       models.PendingShiftReport,
		ShiftID:    shiftID,
		ExpiresAt:  time.Now().Add(b.pendingTTL),
	})
	if err != nil {
		b.log.Error("Failed to set pending action", "id", userID, "error", err)
		return ctx.Send(msgInternalError)
	}

	return ctx.Send(msgAskReport, forceReply())
}

// absentTodayHandler processes the absent_today callback: it prompts
// for the absence reason and records a pending reply.
func (b *Bot) absentTodayHandler(ctx telebot.Context) error {
	b.metrics.CommandReceived.WithLabelValues("absent_today").Inc()
	_ = ctx.Respond()
	userID := ctx.Sender().ID

	timeoutCtx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	emp, err := b.emrepo.GetEmployeeByTelegramID(timeoutCtx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return ctx.Send(msgNoEmployee)
		}
		b.log.Error("Failed to look up employee", "id", userID, "error", err)
		return ctx.Send(msgInternalError)
	}

	err = b.emrepo.SetPendingAction(timeoutCtx, models.PendingAction{
		EmployeeID: emp.ID,
		Kind:       models.PendingAbsenceReason,
		ExpiresAt:  time.Now().Add(b.pendingTTL),
	})
	if err != nil {
		b.log.Error("Failed to set pending action", "id", userID, "error", err)
		return ctx.Send(msgInternalError)
	}

	return ctx.Send(msgAskAbsence, forceReply())
}

// textHandler resolves a free-text message against the employee's
// pending reply prompt. Messages with no pending prompt get a short
// hint instead of an error.
func (b *Bot) textHandler(ctx telebot.Context) error {
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

	pending, err := b.emrepo.TakePendingAction(timeoutCtx, emp.ID, time.Now())
	if err != nil {
		b.log.Error("Failed to take pending action", "id", userID, "error", err)
		return ctx.Send(msgInternalError)
	}
	if pending == nil {
		return ctx.Send(msgUseButtons)
	}

	switch pending.Kind {
	case models.PendingAbsenceReason:
		if err = b.tracker.RecordAbsence(timeoutCtx, userID, ctx.Text()); err != nil {
			b.log.Error("Failed to record absence", "id", userID, "error", err)
			return ctx.Send(msgInternalError)
		}
		return ctx.Send(msgAbsenceSaved)
	case models.PendingShiftReport:
		input := tracker.ReportInput{DoneItems: []string{ctx.Text()}}
		if err = b.tracker.SubmitReport(timeoutCtx, userID, input); err != nil {
			if errors.Is(err, repository.ErrActiveShiftNotFound) {
				return ctx.Send(msgNoShift)
			}
			b.log.Error("Failed to submit report", "id", userID, "error", err)
			return ctx.Send(msgInternalError)
		}
		return ctx.Send(msgReportSaved)
	default:
		b.log.Warn("Unknown pending action kind", "id", userID, "kind", pending.Kind)
		return ctx.Send(msgUseButtons)
	}
}

// replyShiftError maps lunch toggle errors to user-facing replies.
func (b *Bot) replyShiftError(ctx telebot.Context, op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrEmployeeNotFound):
		return ctx.Send(msgNoEmployee)
	case errors.Is(err, repository.ErrActiveShiftNotFound):
		return ctx.Send(msgNoShift)
	default:
		b.log.Error("Failed to process "+op, "id", ctx.Sender().ID, "error", err)
		return ctx.Send(msgInternalError)
	}
}
