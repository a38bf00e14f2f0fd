package webapp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shiftline/smena-bot/internal/repository"
	"github.com/shiftline/smena-bot/internal/tracker"
	"github.com/shiftline/smena-bot/internal/webapp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTracker struct {
	planErr    error
	reportErr  error
	lunchErr   error
	planCalls  []tracker.PlanInput
	reports    []tracker.ReportInput
	lunchOps   []string
	lastUserID int64
}

func (f *fakeTracker) SubmitPlan(_ context.Context, userID int64, plan tracker.PlanInput) (string, error) {
	f.lastUserID = userID
	f.planCalls = append(f.planCalls, plan)
	if f.planErr != nil {
		return "", f.planErr
	}
	return "shift-1", nil
}

func (f *fakeTracker) SubmitReport(_ context.Context, userID int64, report tracker.ReportInput) error {
	f.lastUserID = userID
	f.reports = append(f.reports, report)
	return f.reportErr
}

func (f *fakeTracker) LunchStart(_ context.Context, userID int64) error {
	f.lastUserID = userID
	f.lunchOps = append(f.lunchOps, "start")
	return f.lunchErr
}

func (f *fakeTracker) LunchEnd(_ context.Context, userID int64) error {
	f.lastUserID = userID
	f.lunchOps = append(f.lunchOps, "end")
	return f.lunchErr
}

func newSubmitRequest(t *testing.T, body map[string]any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodPost, "/webapp/submit", bytes.NewReader(raw))
}

func validInitData(t *testing.T) string {
	t.Helper()
	return signInitData(t, map[string]string{
		"auth_date": "1748856000",
		"user":      `{"id":12345,"first_name":"Иван"}`,
	})
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func newTestHandler(trk *fakeTracker) *webapp.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return webapp.NewHandler(logger, trk, testBotToken)
}

func TestHandler_Submit(t *testing.T) {
	t.Parallel()

	t.Run("plan - success", func(t *testing.T) {
		t.Parallel()
		trk := &fakeTracker{}
		handler := newTestHandler(trk)

		req := newSubmitRequest(t, map[string]any{
			"initData": validInitData(t),
			"type":     "plan",
			"payload": map[string]any{
				"plannedItems": []string{"доставить заказы"},
				"tasksLinks":   []string{"https://tracker.local/T-1"},
			},
		})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "shift-1", body["shiftId"])
		assert.Equal(t, int64(12345), trk.lastUserID)
		require.Len(t, trk.planCalls, 1)
		assert.Equal(t, []string{"доставить заказы"}, trk.planCalls[0].PlannedItems)
	})

	t.Run("plan - duplicate shift maps to 409", func(t *testing.T) {
		t.Parallel()
		trk := &fakeTracker{planErr: tracker.ErrShiftExists}
		handler := newTestHandler(trk)

		req := newSubmitRequest(t, map[string]any{
			"initData": validInitData(t),
			"type":     "plan",
		})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		require.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, false, decodeBody(t, rr)["success"])
	})

	t.Run("report - success", func(t *testing.T) {
		t.Parallel()
		trk := &fakeTracker{}
		handler := newTestHandler(trk)

		req := newSubmitRequest(t, map[string]any{
			"initData": validInitData(t),
			"type":     "report",
			"payload": map[string]any{
				"doneItems": []string{"все доставлено"},
				"blockers":  "пробки",
				"timeSpent": map[string]int{"T-1": 120},
			},
		})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		require.Len(t, trk.reports, 1)
		assert.Equal(t, "пробки", trk.reports[0].Blockers)
	})

	t.Run("report - no active shift maps to 404", func(t *testing.T) {
		t.Parallel()
		trk := &fakeTracker{reportErr: repository.ErrActiveShiftNotFound}
		handler := newTestHandler(trk)

		req := newSubmitRequest(t, map[string]any{
			"initData": validInitData(t),
			"type":     "report",
		})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		require.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("lunch - start and end", func(t *testing.T) {
		t.Parallel()
		trk := &fakeTracker{}
		handler := newTestHandler(trk)

		for _, action := range []string{"start", "end"} {
			req := newSubmitRequest(t, map[string]any{
				"initData": validInitData(t),
				"type":     "lunch",
				"payload":  map[string]any{"action": action},
			})
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			require.Equal(t, http.StatusOK, rr.Code)
		}

		assert.Equal(t, []string{"start", "end"}, trk.lunchOps)
	})

	t.Run("lunch - invalid action", func(t *testing.T) {
		t.Parallel()
		handler := newTestHandler(&fakeTracker{})

		req := newSubmitRequest(t, map[string]any{
			"initData": validInitData(t),
			"type":     "lunch",
			"payload":  map[string]any{"action": "nap"},
		})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects tampered init data with 403", func(t *testing.T) {
		t.Parallel()
		trk := &fakeTracker{}
		handler := newTestHandler(trk)

		req := newSubmitRequest(t, map[string]any{
			"initData": "auth_date=1748856000&hash=deadbeef",
			"type":     "plan",
		})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		require.Equal(t, http.StatusForbidden, rr.Code)
		assert.Empty(t, trk.planCalls)
	})

	t.Run("rejects init data without user with 400", func(t *testing.T) {
		t.Parallel()
		handler := newTestHandler(&fakeTracker{})

		req := newSubmitRequest(t, map[string]any{
			"initData": signInitData(t, map[string]string{"auth_date": "1748856000"}),
			"type":     "plan",
		})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects missing fields with 400", func(t *testing.T) {
		t.Parallel()
		handler := newTestHandler(&fakeTracker{})

		req := newSubmitRequest(t, map[string]any{"type": "plan"})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects unknown form type with 400", func(t *testing.T) {
		t.Parallel()
		handler := newTestHandler(&fakeTracker{})

		req := newSubmitRequest(t, map[string]any{
			"initData": validInitData(t),
			"type":     "vacation",
		})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects non-POST with 405", func(t *testing.T) {
		t.Parallel()
		handler := newTestHandler(&fakeTracker{})

		req := httptest.NewRequest(http.MethodGet, "/webapp/submit", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	})

	t.Run("unexpected tracker error maps to 500", func(t *testing.T) {
		t.Parallel()
		trk := &fakeTracker{reportErr: assert.AnError}
		handler := newTestHandler(trk)

		req := newSubmitRequest(t, map[string]any{
			"initData": validInitData(t),
			"type":     "report",
		})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		require.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
