// Package webapp implements the web submission endpoint used by the
// Telegram mini-app forms: plan at shift start, report at shift end and
// lunch toggles, all funneled into the shift state machine.
package webapp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/shiftline/smena-bot/internal/models"
	"github.com/shiftline/smena-bot/internal/repository"
	"github.com/shiftline/smena-bot/internal/tracker"
)

// Tracker is the slice of the shift state machine the endpoint drives.
type Tracker interface {
	SubmitPlan(ctx context.Context, telegramID int64, plan tracker.PlanInput) (string, error)
	SubmitReport(ctx context.Context, telegramID int64, report tracker.ReportInput) error
	LunchStart(ctx context.Context, telegramID int64) error
	LunchEnd(ctx context.Context, telegramID int64) error
}

// Handler serves POST submissions from the mini-app.
type Handler struct {
	tracker  Tracker
	log      *slog.Logger
	botToken string
}

// NewHandler creates a submission handler verifying init data against
// the given bot token.
func NewHandler(log *slog.Logger, trk Tracker, botToken string) *Handler {
	return &Handler{tracker: trk, log: log, botToken: botToken}
}

type submitRequest struct {
	InitData string          `json:"initData"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
}

type planPayload struct {
	PlannedStartAt *time.Time `json:"plannedStartAt"`
	PlannedEndAt   *time.Time `json:"plannedEndAt"`
	PlannedItems   []string   `json:"plannedItems"`
	TaskLinks      []string   `json:"tasksLinks"`
}

type reportPayload struct {
	DoneItems   []string            `json:"doneItems"`
	Blockers    string              `json:"blockers"`
	TimeSpent   map[string]int      `json:"timeSpent"`
	Attachments []models.Attachment `json:"attachments"`
}

type lunchPayload struct {
	Action string `json:"action"`
}

// ServeHTTP handles one submission: verify the init data signature,
// extract the user, route by form type.
func (h *Handler) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		h.reply(writer, http.StatusMethodNotAllowed, map[string]any{"success": false, "error": "method not allowed"})
		return
	}

	var request submitRequest
	if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
		h.reply(writer, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid JSON body"})
		return
	}
	if request.InitData == "" || request.Type == "" {
		h.reply(writer, http.StatusBadRequest, map[string]any{"success": false, "error": "initData and type are required"})
		return
	}

	if err := VerifyInitData(request.InitData, h.botToken); err != nil {
		h.log.WarnContext(req.Context(), "Rejected submission with invalid init data", "error", err)
		h.reply(writer, http.StatusForbidden, map[string]any{"success": false, "error": "invalid initData"})
		return
	}

	userID, err := UserID(request.InitData)
	if err != nil {
		h.reply(writer, http.StatusBadRequest, map[string]any{"success": false, "error": "user not found in initData"})
		return
	}

	switch request.Type {
	case "plan":
		h.handlePlan(writer, req, userID, request.Payload)
	case "report":
		h.handleReport(writer, req, userID, request.Payload)
	case "lunch":
		h.handleLunch(writer, req, userID, request.Payload)
	default:
		h.reply(writer, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid form type"})
	}
}

func (h *Handler) handlePlan(writer http.ResponseWriter, req *http.Request, userID int64, raw json.RawMessage) {
	var payload planPayload
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			h.reply(writer, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid plan payload"})
			return
		}
	}

	shiftID, err := h.tracker.SubmitPlan(req.Context(), userID, tracker.PlanInput{
		PlannedStartAt: payload.PlannedStartAt,
		PlannedEndAt:   payload.PlannedEndAt,
		PlannedItems:   payload.PlannedItems,
		TaskLinks:      payload.TaskLinks,
	})
	if err != nil {
		h.replyError(writer, req, err)
		return
	}

	h.reply(writer, http.StatusOK, map[string]any{"success": true, "shiftId": shiftID})
}

func (h *Handler) handleReport(writer http.ResponseWriter, req *http.Request, userID int64, raw json.RawMessage) {
	var payload reportPayload
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			h.reply(writer, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid report payload"})
			return
		}
	}

	err := h.tracker.SubmitReport(req.Context(), userID, tracker.ReportInput{
		DoneItems:   payload.DoneItems,
		Blockers:    payload.Blockers,
		TimeSpent:   payload.TimeSpent,
		Attachments: payload.Attachments,
	})
	if err != nil {
		h.replyError(writer, req, err)
		return
	}

	h.reply(writer, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) handleLunch(writer http.ResponseWriter, req *http.Request, userID int64, raw json.RawMessage) {
	var payload lunchPayload
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			h.reply(writer, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid lunch payload"})
			return
		}
	}

	var err error
	switch payload.Action {
	case "start":
		err = h.tracker.LunchStart(req.Context(), userID)
	case "end":
		err = h.tracker.LunchEnd(req.Context(), userID)
	default:
		h.reply(writer, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid lunch action"})
		return
	}
	if err != nil {
		h.replyError(writer, req, err)
		return
	}

	h.reply(writer, http.StatusOK, map[string]any{"success": true})
}

// replyError maps state machine errors to the JSON error envelope.
func (h *Handler) replyError(writer http.ResponseWriter, req *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrEmployeeNotFound):
		h.reply(writer, http.StatusNotFound, map[string]any{"success": false, "error": "employee not found"})
	case errors.Is(err, repository.ErrActiveShiftNotFound):
		h.reply(writer, http.StatusNotFound, map[string]any{"success": false, "error": "active shift not found"})
	case errors.Is(err, tracker.ErrShiftExists):
		h.reply(writer, http.StatusConflict, map[string]any{"success": false, "error": "shift already exists for today"})
	case errors.Is(err, tracker.ErrInvalidInput):
		h.reply(writer, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid input"})
	default:
		h.log.ErrorContext(req.Context(), "Submission failed", "error", err)
		h.reply(writer, http.StatusInternalServerError, map[string]any{"success": false, "error": "internal server error"})
	}
}

func (h *Handler) reply(writer http.ResponseWriter, status int, body map[string]any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	if err := json.NewEncoder(writer).Encode(body); err != nil {
		h.log.Error("Failed to write submission response", "error", err)
	}
}
