package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/nerrad567/lorawatch-core/internal/device"
	"github.com/nerrad567/lorawatch-core/internal/infrastructure/config"
	"github.com/nerrad567/lorawatch-core/internal/infrastructure/database"
	"github.com/nerrad567/lorawatch-core/internal/infrastructure/logging"
	"github.com/nerrad567/lorawatch-core/internal/journal"
	"github.com/nerrad567/lorawatch-core/internal/monitor"
	"github.com/nerrad567/lorawatch-core/internal/observer"
	"github.com/nerrad567/lorawatch-core/migrations"
)

const (
	testSecret = "test-secret-key-at-least-32-characters-long"
	testNwkKey = "000102030405060708090a0b0c0d0e0f"

	sirenEUI  = "a000000000000001"
	rangerEUI = "b000000000000002"
	badgeEUI  = "d000000000000004"
)

// env is a Server wired to a real registry, manager, notifier and journal.
// Only the ChirpStack directory is mocked.
type env struct {
	srv      *Server
	registry *device.Registry
	notifier *observer.Notifier
	journal  *journal.Journal
	dir      *monitor.MockDirectory
}

type envOption func(*Deps)

func withSecret(secret string) envOption {
	return func(d *Deps) { d.Security.JWT.Secret = secret }
}

func withOrigins(origins ...string) envOption {
	return func(d *Deps) { d.Config.CORS.AllowedOrigins = origins }
}

func withCheck(name string, c HealthChecker) envOption {
	return func(d *Deps) {
		if d.Checks == nil {
			d.Checks = map[string]HealthChecker{}
		}
		d.Checks[name] = c
	}
}

func withOperator(op Operator) envOption {
	return func(d *Deps) { d.Operator = op }
}

func newEnv(t *testing.T, opts ...envOption) *env {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{Path: database.MemoryPath, BusyTimeout: 1})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup
	require.NoError(t, db.Migrate(context.Background(), migrations.FS))
	jrnl := journal.New(db)

	registry := device.NewRegistry()
	now := time.Now()
	registry.LoadAll([]device.Descriptor{
		{DevEUI: sirenEUI, Name: "Siren", Description: "Sound Unit", LastSeenAt: &now},
		{DevEUI: rangerEUI, Name: "Ranger", Description: "LiDAR unit"},
		{DevEUI: badgeEUI, Name: "Badge", Description: "Wearable Alert Unit", LastSeenAt: &now},
	})

	notifier := observer.New()
	notifier.Register(jrnl)

	dir := monitor.NewMockDirectory(gomock.NewController(t))
	manager := monitor.NewManager(registry, dir, notifier, monitor.ManagerConfig{ApplicationID: "app-1"})

	log := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")
	deps := Deps{
		Config: config.APIConfig{
			Host:     "127.0.0.1",
			Timeouts: config.APITimeoutConfig{Read: 5, Write: 5, Idle: 5},
		},
		WS:       config.WebSocketConfig{MaxMessageSize: 8192, PingInterval: 30, PongTimeout: 10},
		Logger:   log,
		Registry: registry,
		Operator: manager,
		Logs:     jrnl,
		Notifier: notifier,
		Version:  "test",
	}
	for _, opt := range opts {
		opt(&deps)
	}

	srv, err := New(deps)
	require.NoError(t, err)

	return &env{srv: srv, registry: registry, notifier: notifier, journal: jrnl, dir: dir}
}

// do serves one request through the full router.
func (e *env) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type checkFunc func(ctx context.Context) error

func (f checkFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

var errBrokerDown = errors.New("broker down")

// listResponse is the body of the list endpoints.
type listResponse struct {
	Devices  []device.Device   `json:"devices"`
	Entries  []journal.Entry   `json:"entries"`
	Profiles []json.RawMessage `json:"profiles"`
	Count    int               `json:"count"`
}

func bearer(t *testing.T) []string {
	t.Helper()
	token, err := IssueToken(testSecret, "operator", time.Minute)
	require.NoError(t, err)
	return []string{"Authorization", "Bearer " + token}
}
