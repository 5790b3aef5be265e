package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loipen-tracker/internal/api"
	apperrors "loipen-tracker/internal/errors"
	"loipen-tracker/internal/repository/sqlstore"
	"loipen-tracker/internal/services"
	"loipen-tracker/internal/timer"
)

const testSecret = "test-secret"

var zurich, _ = time.LoadLocation("Europe/Zurich")

type testServer struct {
	handler http.Handler
	clock   *timer.ManualClock
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := sqlstore.Open(context.Background(), sqlstore.Options{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "loipen.db"),
		Location: zurich,
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	clock := timer.NewManualClock(time.Date(2025, 1, 10, 8, 0, 0, 0, zurich))
	container := services.NewServiceContainer(store, services.Options{Clock: clock, Location: zurich, PersistPauses: true})
	srv, err := New(api.NewBusinessAPI(container, clock), Config{JWTSecret: testSecret}, nil)
	require.NoError(t, err)

	return &testServer{handler: srv.Handler(), clock: clock}
}

func (ts *testServer) do(t *testing.T, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if user != "" {
		token, err := GenerateToken(user, []byte(testSecret), time.Hour, time.Now())
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode(t, rec)
	detail, ok := body["error"].(map[string]any)
	require.True(t, ok, rec.Body.String())
	return detail["code"].(string)
}

func TestHealth(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestAuthRequired(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic YW5uYTpzZWNyZXQ="},
		{"bad signature", "Bearer " + mustToken(t, "anna", "other-secret", time.Hour)},
		{"expired", "Bearer " + mustToken(t, "anna", testSecret, -time.Minute)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/timer", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			ts.handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "PERMISSION_DENIED", errorCode(t, rec))
		})
	}
}

func mustToken(t *testing.T, user, secret string, ttl time.Duration) string {
	t.Helper()
	token, err := GenerateToken(user, []byte(secret), ttl, time.Now())
	require.NoError(t, err)
	return token
}

func TestTimerEndpoints(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/timer/start", "anna", `{"activity":"Loipenpräparation"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Loipenpräparation", decode(t, rec)["activity"])

	rec = ts.do(t, http.MethodPost, "/api/timer/start", "anna", `{"activity":"SetUp"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", errorCode(t, rec))

	ts.clock.Advance(30 * time.Minute)
	rec = ts.do(t, http.MethodPost, "/api/timer/pause", "anna", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	ts.clock.Advance(10 * time.Minute)
	rec = ts.do(t, http.MethodGet, "/api/timer", "anna", "")
	require.Equal(t, http.StatusOK, rec.Code)
	timerBody := decode(t, rec)["timer"].(map[string]any)
	status := timerBody["status"].(map[string]any)
	assert.Equal(t, "paused", status["state"])
	assert.Equal(t, "00:30:00", status["elapsed"])

	rec = ts.do(t, http.MethodPost, "/api/timer/resume", "anna", "")
	require.Equal(t, http.StatusOK, rec.Code)

	ts.clock.Advance(15 * time.Minute)
	rec = ts.do(t, http.MethodPost, "/api/timer/stop", "anna", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 0.75, decode(t, rec)["total_hours"])

	rec = ts.do(t, http.MethodPost, "/api/timer/stop", "anna", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTimerIsolatedPerUser(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/timer/start", "anna", `{"activity":"SetUp"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/timer", "beat", "")
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode(t, rec)["timer"].(map[string]any)["status"].(map[string]any)
	assert.Equal(t, "idle", status["state"])
}

func TestManualEntryAndList(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/entries/manual", "anna",
		`{"date":"2025-01-09","activity":"Abbau","start":"13:00","end":"15:30"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 2.5, decode(t, rec)["total_hours"])

	rec = ts.do(t, http.MethodPost, "/api/entries/manual", "anna",
		`{"date":"2025-01-09","activity":"Abbau","start":"15:30","end":"13:00"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_FAILED", body["code"])
	assert.Equal(t, "end time must be after start time", body["message"])

	rec = ts.do(t, http.MethodPost, "/api/entries/manual", "anna", `{"date":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", errorCode(t, rec))

	rec = ts.do(t, http.MethodGet, "/api/entries?season=Saison%202024-25", "anna", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decode(t, rec)
	assert.Len(t, report["entries"], 1)
	assert.Equal(t, 2.5, report["total_hours"])

	rec = ts.do(t, http.MethodGet, "/api/entries", "beat", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["entries"], "users only see their own entries")

	rec = ts.do(t, http.MethodGet, "/api/entries?limit=ten", "anna", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummaryAndSeasons(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/entries/manual", "anna",
		`{"date":"2025-01-10","activity":"SetUp","start":"06:00","end":"07:00"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/summary", "anna", "")
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode(t, rec)
	assert.Equal(t, 1.0, summary["today"])
	assert.Equal(t, "Saison 2024-25", summary["season_label"])

	rec = ts.do(t, http.MethodGet, "/api/seasons", "anna", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode(t, rec)["seasons"], "Saison 2024-25")
}

func TestReceiptsNotConfigured(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/receipts/upload-url", "anna", `{"file_name":"beleg.jpg"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "STORE_ERROR", errorCode(t, rec))
}

func TestWorkerRecordEndpoints(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/diesel", "anna", `{"tank":"Nidfurn","liters":"48,5"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	diesel := decode(t, rec)
	assert.Equal(t, "anna", diesel["user_id"])
	id := diesel["id"].(string)

	rec = ts.do(t, http.MethodPut, "/api/diesel/"+id, "anna", `{"tank":"Hätzingen","liters":"50"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 50.0, decode(t, rec)["liters"])

	rec = ts.do(t, http.MethodPut, "/api/diesel/"+id, "beat", `{"tank":"Nidfurn","liters":"1"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, rec))

	rec = ts.do(t, http.MethodPost, "/api/expenses", "anna", `{"amount":"12.80","receipt_key":"anna/1-a.jpg","file_name":"a.jpg"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/expenses", "anna", `{"amount":"12.80","receipt_key":"beat/1-a.jpg"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/cash", "anna", `{"amount":"150"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cashID := decode(t, rec)["id"].(string)

	rec = ts.do(t, http.MethodPut, "/api/cash/"+cashID, "anna", `{"amount":"155","description":"korrigiert"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	for _, amount := range []string{"0", "-10", "viel"} {
		rec = ts.do(t, http.MethodPost, "/api/cash", "anna", `{"amount":"`+amount+`"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code, amount)
		assert.Equal(t, "VALIDATION_FAILED", errorCode(t, rec))
	}

	rec = ts.do(t, http.MethodGet, "/api/records", "anna", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	book := decode(t, rec)
	assert.Len(t, book["diesel"], 1)
	assert.Len(t, book["expenses"], 1)
	assert.Len(t, book["cash_takings"], 1)
	assert.Equal(t, 12.8, book["expense_total"])
	assert.Equal(t, 155.0, book["cash_total"])
	assert.Equal(t, map[string]any{"Nidfurn": 0.0, "Haetzingen": 50.0}, book["liters_by_tank"])

	rec = ts.do(t, http.MethodGet, "/api/records", "beat", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.0, decode(t, rec)["cash_total"])
}

func TestMethodRouting(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/timer/start", "anna", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{apperrors.NewValidationError("bad", nil), http.StatusBadRequest},
		{apperrors.NewInvalidInputError("limit", -1, "negative"), http.StatusBadRequest},
		{apperrors.NewNotFoundError("running timer", ""), http.StatusNotFound},
		{apperrors.NewConflictError("running"), http.StatusConflict},
		{apperrors.NewStoreError("insert", nil), http.StatusServiceUnavailable},
		{apperrors.NewTimeoutError("insert", "5s"), http.StatusGatewayTimeout},
		{apperrors.NewPermissionError("download", "receipt"), http.StatusForbidden},
		{errInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, statusFor(tt.err), "%v", tt.err)
	}
}

func TestTokens(t *testing.T) {
	token, err := GenerateToken("anna", []byte(testSecret), time.Hour, time.Now())
	require.NoError(t, err)

	user, err := GetUserIDFromToken(token, []byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, "anna", user)

	_, err = GenerateToken("", []byte(testSecret), time.Hour, time.Now())
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidInput))

	_, err = New(nil, Config{}, nil)
	assert.Error(t, err, "a secret is required")
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNKNOWN_ERROR")
}

func TestRequestLogger_NilLogger(t *testing.T) {
	h := RequestLogger(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	})
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
