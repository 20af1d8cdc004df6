package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapsolve/snapsolve/internal/app/entitlement"
	"github.com/snapsolve/snapsolve/internal/app/progression"
	"github.com/snapsolve/snapsolve/internal/app/reminder"
	"github.com/snapsolve/snapsolve/internal/health"
	"github.com/snapsolve/snapsolve/internal/infra/sqlite"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := sqlite.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// Monday evening, after the default 19:00 reminder hour.
	clock := fixedClock{time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC)}
	reminders := reminder.NewService(db, clock, nil)
	prog, err := progression.NewService(progression.Options{
		Config:    progression.Config{DailyBase: 2, PointsPerSolve: 10},
		Clock:     clock,
		KV:        db,
		Reminders: reminders,
	})
	require.NoError(t, err)

	srv := NewServer(prog, entitlement.NewService(db, prog, clock, nil), nil)
	srv.SetReminders(reminders)
	srv.EnableMetrics()

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, ts *httptest.Server, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, rdr)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(bytes.TrimSpace(raw)) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

// ─── Tests ──────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, body := do(t, ts, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestHealth_Checks(t *testing.T) {
	dir := t.TempDir()
	db, err := sqlite.Open(dir)
	require.NoError(t, err)
	clock := fixedClock{time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC)}
	prog, err := progression.NewService(progression.Options{Clock: clock, KV: db})
	require.NoError(t, err)

	checker := health.NewChecker(db, dir, prog)
	srv := NewServer(prog, entitlement.NewService(db, prog, clock, nil), nil)
	srv.SetHealth(checker)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	checker.RunOnce(t.Context())
	resp, body := do(t, ts, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["checks"], 3)

	db.Close()
	checker.RunOnce(t.Context())
	resp, body = do(t, ts, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "degraded", body["status"])
}

func TestVersion(t *testing.T) {
	ts := newTestServer(t)
	_, body := do(t, ts, http.MethodGet, "/api/version", "")
	assert.Equal(t, Version, body["version"])
}

func TestRecordSolve(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, ts, http.MethodPost, "/api/progression/solves", `{"subject":"math"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["current_streak"])
	assert.Equal(t, float64(1), body["quota_remaining"])
	assert.Equal(t, "2026-10-19", body["date"])
	unlocked := body["unlocked"].([]any)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "first_solve", unlocked[0].(map[string]any)["id"])
}

func TestRecordSolve_EmptyBody(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := do(t, ts, http.MethodPost, "/api/progression/solves", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRecordSolve_QuotaExhausted(t *testing.T) {
	ts := newTestServer(t)

	for i := 0; i < 2; i++ {
		resp, _ := do(t, ts, http.MethodPost, "/api/progression/solves", `{}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, body := do(t, ts, http.MethodPost, "/api/progression/solves", `{}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "quota_exhausted", errorCode(body))

	_, status := do(t, ts, http.MethodGet, "/api/progression/status", "")
	assert.Equal(t, float64(2), status["total_solves"])
	assert.Equal(t, float64(0), status["remaining"])
}

func TestRecordSolve_BadJSON(t *testing.T) {
	ts := newTestServer(t)
	resp, body := do(t, ts, http.MethodPost, "/api/progression/solves", `{"subject":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_request", errorCode(body))
}

func TestStatus_Fresh(t *testing.T) {
	ts := newTestServer(t)
	resp, body := do(t, ts, http.MethodGet, "/api/progression/status", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "not_started", body["streak_status"])
	assert.Equal(t, float64(2), body["remaining"])
	assert.Equal(t, float64(1), body["level"])
	assert.Equal(t, float64(0), body["points"])
}

func TestAchievements(t *testing.T) {
	ts := newTestServer(t)
	_, body := do(t, ts, http.MethodGet, "/api/progression/achievements", "")
	list := body["achievements"].([]any)
	assert.Len(t, list, len(progression.DefaultCatalog()))
}

func TestPreviewProgress(t *testing.T) {
	ts := newTestServer(t)
	do(t, ts, http.MethodPost, "/api/progression/solves", `{"subject":"physics"}`)

	resp, body := do(t, ts, http.MethodGet, "/api/progression/achievements/physics_25/progress", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["current"])
	assert.Equal(t, float64(25), body["target"])
	assert.Equal(t, "subject_count", body["kind"])

	resp, body = do(t, ts, http.MethodGet, "/api/progression/achievements/nope/progress", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "achievement_not_found", errorCode(body))
}

func TestAcknowledge(t *testing.T) {
	ts := newTestServer(t)
	do(t, ts, http.MethodPost, "/api/progression/solves", `{}`)

	_, body := do(t, ts, http.MethodPost, "/api/progression/achievements/ack", "")
	assert.Equal(t, "first_solve", body["acknowledged"])

	_, status := do(t, ts, http.MethodGet, "/api/progression/status", "")
	assert.Nil(t, status["last_unlocked_achievement_id"])
}

func TestCosmetics(t *testing.T) {
	ts := newTestServer(t)
	_, body := do(t, ts, http.MethodGet, "/api/progression/cosmetics", "")
	assert.Equal(t, float64(1), body["level"])
	assert.Len(t, body["cosmetics"].([]any), len(progression.DefaultCosmetics()))
}

func TestCredits(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, ts, http.MethodPost, "/api/progression/credits", `{"amount":10,"product_id":"credits_10"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(10), body["extra_solve_credits"])
	assert.Equal(t, float64(12), body["remaining"])

	_, purchases := do(t, ts, http.MethodGet, "/api/progression/purchases", "")
	assert.Len(t, purchases["purchases"].([]any), 1)
}

func TestCredits_Validation(t *testing.T) {
	ts := newTestServer(t)

	for _, body := range []string{`{"amount":0}`, `{"amount":-3}`, `{"amount":1001}`, `{}`} {
		resp, out := do(t, ts, http.MethodPost, "/api/progression/credits", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		assert.Equal(t, "validation_failed", errorCode(out), body)
	}
}

func TestEntitlement(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, ts, http.MethodPost, "/api/progression/entitlement", `{"premium":true,"source":"app_store"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["premium"])
	assert.Equal(t, float64(progression.Unlimited), body["remaining"])

	resp, body = do(t, ts, http.MethodPost, "/api/progression/entitlement", `{"source":"app_store"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation_failed", errorCode(body))
}

func TestReset(t *testing.T) {
	ts := newTestServer(t)
	do(t, ts, http.MethodPost, "/api/progression/solves", `{}`)

	resp, _ := do(t, ts, http.MethodPost, "/api/progression/reset", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "reset needs confirm")

	resp, body := do(t, ts, http.MethodPost, "/api/progression/reset", `{"confirm":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["total_solves"])
	assert.Equal(t, float64(0), body["points"])
}

func TestReminders(t *testing.T) {
	ts := newTestServer(t)

	// A solve queues tomorrow's reminder; nothing is due yet.
	do(t, ts, http.MethodPost, "/api/progression/solves", `{}`)
	_, body := do(t, ts, http.MethodGet, "/api/progression/reminders", "")
	assert.Empty(t, body["reminders"].([]any))

	resp, out := do(t, ts, http.MethodPost, "/api/progression/reminders/99/shown", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "reminder_not_found", errorCode(out))

	resp, _ = do(t, ts, http.MethodPost, "/api/progression/reminders/abc/shown", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	do(t, ts, http.MethodPost, "/api/progression/solves", `{}`)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "snapsolve_solves_recorded_total")
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := do(t, ts, http.MethodOptions, "/api/progression/status", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
