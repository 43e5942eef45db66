package http

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/analytics"
	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/domain"
	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/twin"
)

func newLiveApp(secret string) (*fiber.App, *twin.Session) {
	session := twin.NewSession(twin.NewSynthesizer(twin.NewSource(21)), 5, "home-test")
	app := fiber.New()
	RegisterLive(app, session, LiveOptions{Interval: 2 * time.Second, FaultSecret: secret})
	return app, session
}

func clock(hour, sec int) time.Time {
	return time.Date(2024, 3, 14, hour, 0, sec, 0, time.UTC)
}

func do(t *testing.T, app *fiber.App, method, target string, header map[string]string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestLive_LatestBeforeFirstReading(t *testing.T) {
	app, _ := newLiveApp("")
	status, _ := do(t, app, fiber.MethodGet, "/latest", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestLive_HistoryIsCapped(t *testing.T) {
	app, session := newLiveApp("")
	for i := 0; i < 8; i++ {
		session.Step(clock(8, i))
	}

	status, body := do(t, app, fiber.MethodGet, "/history", nil)
	require.Equal(t, fiber.StatusOK, status)

	var got struct {
		HomeID   string           `json:"home_id"`
		MaxLen   int              `json:"max_len"`
		Readings []domain.Reading `json:"readings"`
	}
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "home-test", got.HomeID)
	assert.Equal(t, 5, got.MaxLen)
	require.Len(t, got.Readings, 5)
	assert.Equal(t, "08:00:03", got.Readings[0].Timestamp)
	assert.Equal(t, "08:00:07", got.Readings[4].Timestamp)
}

func TestLive_FaultEndpointSchedulesFault(t *testing.T) {
	app, session := newLiveApp("")

	status, _ := do(t, app, fiber.MethodPost, "/fault", nil)
	require.Equal(t, fiber.StatusAccepted, status)
	assert.True(t, session.FaultPending())

	r := session.Step(clock(3, 0))
	assert.Equal(t, domain.StatusFault, r.FaultStatus)

	status, body := do(t, app, fiber.MethodGet, "/insights", nil)
	require.Equal(t, fiber.StatusOK, status)
	var insights []analytics.Insight
	require.NoError(t, json.Unmarshal(body, &insights))
	require.NotEmpty(t, insights)
	assert.Equal(t, "fault_detected", insights[0].Code)

	status, body = do(t, app, fiber.MethodGet, "/spatial", nil)
	require.Equal(t, fiber.StatusOK, status)
	var state domain.SpatialState
	require.NoError(t, json.Unmarshal(body, &state))
	assert.Equal(t, "high", state.Level)
}

func TestLive_FaultEndpointRequiresToken(t *testing.T) {
	app, session := newLiveApp("s3cret")

	status, _ := do(t, app, fiber.MethodPost, "/fault", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	bad, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "ops"}).SignedString([]byte("other"))
	require.NoError(t, err)
	status, _ = do(t, app, fiber.MethodPost, "/fault", map[string]string{"Authorization": "Bearer " + bad})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.False(t, session.FaultPending())

	good, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "ops"}).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	status, _ = do(t, app, fiber.MethodPost, "/fault", map[string]string{"Authorization": "Bearer " + good})
	assert.Equal(t, fiber.StatusAccepted, status)
	assert.True(t, session.FaultPending())
}

func TestLive_StatsAndForecast(t *testing.T) {
	app, session := newLiveApp("")
	for i := 0; i < 4; i++ {
		session.Step(clock(19, i))
	}

	status, body := do(t, app, fiber.MethodGet, "/stats", nil)
	require.Equal(t, fiber.StatusOK, status)
	var s analytics.Summary
	require.NoError(t, json.Unmarshal(body, &s))
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 1.0, s.OccupiedShare)

	status, body = do(t, app, fiber.MethodGet, "/forecast", nil)
	require.Equal(t, fiber.StatusOK, status)
	var f struct {
		Points []float64 `json:"points"`
	}
	require.NoError(t, json.Unmarshal(body, &f))
	assert.Len(t, f.Points, 24)

	status, _ = do(t, app, fiber.MethodGet, "/forecast?points=0", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestLive_ExportAndSVG(t *testing.T) {
	app, session := newLiveApp("")
	session.Step(clock(2, 0))
	session.Step(clock(2, 2))

	status, body := do(t, app, fiber.MethodGet, "/export.csv", nil)
	require.Equal(t, fiber.StatusOK, status)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "datetime,Total Load,Price,Occupancy,Fault Status", lines[0])

	status, body = do(t, app, fiber.MethodGet, "/spatial.svg", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), `fill="#2ecc71"`)
	assert.Contains(t, string(body), "Spatial Load State:")
}

func TestLive_Maintenance(t *testing.T) {
	app, session := newLiveApp("")
	status, _ := do(t, app, fiber.MethodGet, "/maintenance", nil)
	assert.Equal(t, fiber.StatusConflict, status)

	session.Step(clock(10, 0))
	session.Step(clock(10, 2))
	status, _ = do(t, app, fiber.MethodGet, "/maintenance", nil)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestLive_Metrics(t *testing.T) {
	app, _ := newLiveApp("")
	status, _ := do(t, app, fiber.MethodGet, "/metrics", nil)
	assert.Equal(t, fiber.StatusOK, status)
}
