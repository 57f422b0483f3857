package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/nerrad567/lorawatch-core/internal/device"
	"github.com/nerrad567/lorawatch-core/internal/directory"
	"github.com/nerrad567/lorawatch-core/internal/journal"
	"github.com/nerrad567/lorawatch-core/internal/monitor"
	"github.com/nerrad567/lorawatch-core/internal/observer"
)

func TestNew_RequiresDependencies(t *testing.T) {
	e := newEnv(t)

	_, err := New(Deps{Registry: e.registry, Operator: e.srv.operator})
	assert.Error(t, err)
	_, err = New(Deps{Logger: e.srv.logger, Operator: e.srv.operator})
	assert.Error(t, err)
	_, err = New(Deps{Logger: e.srv.logger, Registry: e.registry})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	t.Run("all components ok", func(t *testing.T) {
		e := newEnv(t, withCheck("database", checkFunc(func(context.Context) error { return nil })))

		rec := e.do(t, http.MethodGet, "/api/v1/health", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decode[map[string]any](t, rec)
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, "test", body["version"])
		assert.EqualValues(t, 3, body["devices"])
		assert.Equal(t, map[string]any{"database": "ok"}, body["components"])
	})

	t.Run("failing component degrades", func(t *testing.T) {
		e := newEnv(t,
			withCheck("database", checkFunc(func(context.Context) error { return nil })),
			withCheck("mqtt", checkFunc(func(context.Context) error { return errBrokerDown })),
		)

		rec := e.do(t, http.MethodGet, "/api/v1/health", nil)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		body := decode[map[string]any](t, rec)
		assert.Equal(t, "degraded", body["status"])
		assert.Equal(t, map[string]any{"database": "ok", "mqtt": "broker down"}, body["components"])
	})

	t.Run("needs no token", func(t *testing.T) {
		e := newEnv(t, withSecret(testSecret))
		rec := e.do(t, http.MethodGet, "/api/v1/health", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestListDevices(t *testing.T) {
	e := newEnv(t)
	_, err := e.registry.SetAlert(badgeEUI)
	require.NoError(t, err)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"all in load order", "", []string{sirenEUI, rangerEUI, badgeEUI}},
		{"by status", "?status=never_seen", []string{rangerEUI}},
		{"alerting", "?status=alert", []string{badgeEUI}},
		{"by class", "?class=Sound+Unit", []string{sirenEUI}},
		{"no match", "?class=Gateway", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, http.MethodGet, "/api/v1/devices"+tt.query, nil)
			require.Equal(t, http.StatusOK, rec.Code)

			body := decode[listResponse](t, rec)
			var got []string
			for _, d := range body.Devices {
				got = append(got, d.DevEUI)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.want), body.Count)
		})
	}

	t.Run("empty result is an array", func(t *testing.T) {
		rec := e.do(t, http.MethodGet, "/api/v1/devices?status=offline", nil)
		assert.Contains(t, rec.Body.String(), `"devices":[]`)
	})
}

func TestGetDevice(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/api/v1/devices/A000000000000001", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[device.Device](t, rec)
	assert.Equal(t, "Siren", got.Name)
	assert.Equal(t, device.StatusOnline, got.Status)
	assert.Contains(t, rec.Body.String(), `"has_active_alert":false`)

	rec = e.do(t, http.MethodGet, "/api/v1/devices/ffffffffffffffff", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, ErrCodeNotFound, decode[Error](t, rec).Code)
}

func TestDeviceStats(t *testing.T) {
	e := newEnv(t)
	_, err := e.registry.SetAlert(sirenEUI)
	require.NoError(t, err)

	rec := e.do(t, http.MethodGet, "/api/v1/devices/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	stats := decode[device.Stats](t, rec)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.ActiveAlerts)
	assert.Equal(t, 1, stats.ByStatus[device.StatusNeverSeen])
	assert.Equal(t, 1, stats.ByClass[device.ClassWearable])
}

func TestCreateDevice(t *testing.T) {
	valid := monitor.AddRequest{
		DevEUI:    "E000000000000005",
		Name:      "Loader cab",
		ProfileID: "profile-1",
		NwkKey:    testNwkKey,
		Class:     device.ClassWearable,
	}

	t.Run("created", func(t *testing.T) {
		e := newEnv(t)
		e.dir.EXPECT().CreateDevice(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, nd directory.NewDevice) error {
				assert.Equal(t, "e000000000000005", nd.DevEUI)
				assert.Equal(t, "app-1", nd.ApplicationID)
				return nil
			})

		rec := e.do(t, http.MethodPost, "/api/v1/devices", valid)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		res := decode[Result](t, rec)
		assert.True(t, res.OK)
		assert.Equal(t, "Node Loader cab added successfully.", res.Message)
		require.NotNil(t, res.Device)
		assert.Equal(t, device.StatusNeverSeen, res.Device.Status)
		assert.Equal(t, 4, e.registry.Count())
	})

	t.Run("invalid key", func(t *testing.T) {
		e := newEnv(t)
		req := valid
		req.NwkKey = "short"

		rec := e.do(t, http.MethodPost, "/api/v1/devices", req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		res := decode[Result](t, rec)
		assert.False(t, res.OK)
		assert.Contains(t, res.Message, "network key")
	})

	t.Run("malformed body", func(t *testing.T) {
		e := newEnv(t)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/devices", strings.NewReader("{"))
		rec := httptest.NewRecorder()
		e.srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("already registered locally", func(t *testing.T) {
		e := newEnv(t)
		req := valid
		req.DevEUI = sirenEUI

		rec := e.do(t, http.MethodPost, "/api/v1/devices", req)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("already in chirpstack", func(t *testing.T) {
		e := newEnv(t)
		e.dir.EXPECT().CreateDevice(gomock.Any(), gomock.Any()).Return(directory.ErrAlreadyExists)

		rec := e.do(t, http.MethodPost, "/api/v1/devices", valid)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, 3, e.registry.Count())
	})

	t.Run("chirpstack unavailable", func(t *testing.T) {
		e := newEnv(t)
		e.dir.EXPECT().CreateDevice(gomock.Any(), gomock.Any()).Return(directory.ErrUnavailable)

		rec := e.do(t, http.MethodPost, "/api/v1/devices", valid)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.False(t, decode[Result](t, rec).OK)
	})
}

func TestDeleteDevice(t *testing.T) {
	e := newEnv(t)
	e.dir.EXPECT().DeleteDevice(gomock.Any(), rangerEUI).Return(nil)

	rec := e.do(t, http.MethodDelete, "/api/v1/devices/"+rangerEUI, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Node Ranger removed successfully.", decode[Result](t, rec).Message)

	_, ok := e.registry.Get(rangerEUI)
	assert.False(t, ok)

	rec = e.do(t, http.MethodDelete, "/api/v1/devices/"+rangerEUI, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteDevice_DirectoryFailureKeepsDevice(t *testing.T) {
	e := newEnv(t)
	e.dir.EXPECT().DeleteDevice(gomock.Any(), sirenEUI).Return(directory.ErrRequestFailed)

	rec := e.do(t, http.MethodDelete, "/api/v1/devices/"+sirenEUI, nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	_, ok := e.registry.Get(sirenEUI)
	assert.True(t, ok)
}

func TestClearAlert(t *testing.T) {
	e := newEnv(t)
	_, err := e.registry.SetAlert(sirenEUI)
	require.NoError(t, err)

	rec := e.do(t, http.MethodDelete, "/api/v1/devices/"+sirenEUI+"/alert", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[Result](t, rec)
	assert.Equal(t, "Node Siren alert cleared. Status: Online", res.Message)
	require.NotNil(t, res.Device)
	assert.False(t, res.Device.HasActiveAlert())

	rec = e.do(t, http.MethodDelete, "/api/v1/devices/ffffffffffffffff/alert", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSendCommand(t *testing.T) {
	t.Run("queued", func(t *testing.T) {
		e := newEnv(t)
		e.dir.EXPECT().
			EnqueueDownlink(gomock.Any(), rangerEUI, []byte{0x02}, false, uint32(monitor.DefaultDownlinkFPort)).
			Return("queue-7", nil)

		rec := e.do(t, http.MethodPost, "/api/v1/devices/"+rangerEUI+"/commands",
			commandRequest{Command: "reset_request"})
		require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

		res := decode[Result](t, rec)
		assert.Equal(t, "Reset Request sent successfully.", res.Message)
		assert.Equal(t, "queue-7", res.QueueItemID)
	})

	t.Run("unknown command", func(t *testing.T) {
		e := newEnv(t)
		rec := e.do(t, http.MethodPost, "/api/v1/devices/"+rangerEUI+"/commands",
			commandRequest{Command: "self_destruct"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown device", func(t *testing.T) {
		e := newEnv(t)
		rec := e.do(t, http.MethodPost, "/api/v1/devices/ffffffffffffffff/commands",
			commandRequest{Command: "status_request"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("downlink failure", func(t *testing.T) {
		e := newEnv(t)
		e.dir.EXPECT().EnqueueDownlink(gomock.Any(), sirenEUI, gomock.Any(), gomock.Any(), gomock.Any()).
			Return("", directory.ErrRequestFailed)

		rec := e.do(t, http.MethodPost, "/api/v1/devices/"+sirenEUI+"/commands",
			commandRequest{Command: "data_collection"})
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestRefreshDevices(t *testing.T) {
	e := newEnv(t)
	e.dir.EXPECT().ListDevices(gomock.Any(), "app-1").Return([]device.Descriptor{
		{DevEUI: sirenEUI, Name: "Siren", Description: "Sound Unit"},
	}, nil)

	rec := e.do(t, http.MethodPost, "/api/v1/devices/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[Result](t, rec)
	assert.Equal(t, "Loaded 1 devices.", res.Message)
	require.NotNil(t, res.Loaded)
	assert.Equal(t, 1, *res.Loaded)
	assert.Equal(t, 1, e.registry.Count())
}

func TestRefreshDevices_Unavailable(t *testing.T) {
	e := newEnv(t)
	e.dir.EXPECT().ListDevices(gomock.Any(), gomock.Any()).Return(nil, directory.ErrUnavailable)

	rec := e.do(t, http.MethodPost, "/api/v1/devices/refresh", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, 3, e.registry.Count())
}

func TestListProfiles(t *testing.T) {
	e := newEnv(t)
	e.dir.EXPECT().ListDeviceProfiles(gomock.Any()).Return([]directory.Profile{
		{ID: "p1", Name: "EU868 class A", Region: "EU868"},
		{ID: "p2", Name: "EU868 class C", Region: "EU868"},
	}, nil)

	rec := e.do(t, http.MethodGet, "/api/v1/profiles", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[listResponse](t, rec).Count)
	assert.Contains(t, rec.Body.String(), `"name":"EU868 class A"`)
}

func TestListLogs(t *testing.T) {
	e := newEnv(t)
	e.notifier.Event(sirenEUI, "Uplink received from device Siren - "+sirenEUI)
	e.notifier.Alert(badgeEUI, "Alert triggered by device Badge - "+badgeEUI)
	e.notifier.Event(badgeEUI, "Device Badge - "+badgeEUI+" went offline")

	t.Run("all kinds newest first", func(t *testing.T) {
		rec := e.do(t, http.MethodGet, "/api/v1/logs", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decode[listResponse](t, rec)
		require.Equal(t, 3, body.Count)
		assert.Contains(t, body.Entries[0].Message, "went offline")
	})

	t.Run("alerts only", func(t *testing.T) {
		rec := e.do(t, http.MethodGet, "/api/v1/logs?kind=alert", nil)
		body := decode[listResponse](t, rec)
		require.Equal(t, 1, body.Count)
		assert.Equal(t, journal.KindAlert, body.Entries[0].Kind)
		assert.Equal(t, badgeEUI, body.Entries[0].DevEUI)
	})

	t.Run("limit", func(t *testing.T) {
		rec := e.do(t, http.MethodGet, "/api/v1/logs?kind=event&limit=1", nil)
		assert.Equal(t, 1, decode[listResponse](t, rec).Count)
	})

	t.Run("bad parameters", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodGet, "/api/v1/logs?kind=debug", nil).Code)
		assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodGet, "/api/v1/logs?limit=0", nil).Code)
		assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodGet, "/api/v1/logs?limit=ten", nil).Code)
	})
}

func TestListLogs_NoJournal(t *testing.T) {
	e := newEnv(t)
	e.srv.logs = nil

	rec := e.do(t, http.MethodGet, "/api/v1/logs", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestOperatorActionsAreJournalled(t *testing.T) {
	e := newEnv(t)
	_, err := e.registry.SetAlert(sirenEUI)
	require.NoError(t, err)

	rec := e.do(t, http.MethodDelete, "/api/v1/devices/"+sirenEUI+"/alert", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	entries, err := e.journal.Recent(context.Background(), journal.KindEvent, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Node Siren alert cleared. Status: Alert -> Online", entries[0].Message)
}

func TestAuth(t *testing.T) {
	e := newEnv(t, withSecret(testSecret))

	t.Run("missing token", func(t *testing.T) {
		rec := e.do(t, http.MethodGet, "/api/v1/devices", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, ErrCodeUnauthorized, decode[Error](t, rec).Code)
	})

	t.Run("bearer token", func(t *testing.T) {
		rec := e.do(t, http.MethodGet, "/api/v1/devices", nil, bearer(t)...)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("query token", func(t *testing.T) {
		token, err := IssueToken(testSecret, "dashboard", time.Minute)
		require.NoError(t, err)
		rec := e.do(t, http.MethodGet, "/api/v1/devices?token="+token, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := IssueToken("another-secret-key-at-least-32-characters", "operator", time.Minute)
		require.NoError(t, err)
		rec := e.do(t, http.MethodGet, "/api/v1/devices", nil, "Authorization", "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := IssueToken(testSecret, "operator", -time.Minute)
		require.NoError(t, err)
		rec := e.do(t, http.MethodGet, "/api/v1/devices", nil, "Authorization", "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		token, err := IssueToken(testSecret, "operator", time.Minute)
		require.NoError(t, err)
		rec := e.do(t, http.MethodGet, "/api/v1/devices", nil, "Authorization", "Basic "+token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestIssueToken_RequiresSecret(t *testing.T) {
	_, err := IssueToken("", "operator", time.Minute)
	assert.Error(t, err)
}

func TestRequestID(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/api/v1/health", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = e.do(t, http.MethodGet, "/api/v1/health", nil, "X-Request-ID", "req-42")
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
}

func TestCORS(t *testing.T) {
	e := newEnv(t, withOrigins("https://ops.example.com"))

	rec := e.do(t, http.MethodOptions, "/api/v1/devices", nil, "Origin", "https://ops.example.com")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://ops.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "DELETE")

	rec = e.do(t, http.MethodGet, "/api/v1/health", nil, "Origin", "https://evil.example.com")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

// panickingOperator has a nil embedded Operator, so every call panics.
type panickingOperator struct{ Operator }

func TestRecovery(t *testing.T) {
	e := newEnv(t, withOperator(panickingOperator{}))

	rec := e.do(t, http.MethodPost, "/api/v1/devices/refresh", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, ErrCodeInternal, decode[Error](t, rec).Code)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{device.ErrDeviceNotFound, http.StatusNotFound},
		{directory.ErrNotFound, http.StatusNotFound},
		{device.ErrDeviceExists, http.StatusConflict},
		{device.ErrInvalidDevEUI, http.StatusBadRequest},
		{monitor.ErrUnknownCommand, http.StatusBadRequest},
		{journal.ErrInvalidKind, http.StatusBadRequest},
		{directory.ErrInvalidRequest, http.StatusBadRequest},
		{directory.ErrUnavailable, http.StatusServiceUnavailable},
		{directory.ErrRequestFailed, http.StatusBadGateway},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, _ := classify(tt.err)
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestStartAndClose(t *testing.T) {
	e := newEnv(t)

	require.Error(t, e.srv.HealthCheck(context.Background()))
	require.NoError(t, e.srv.Start(context.Background()))
	require.NotEmpty(t, e.srv.Addr())
	assert.NoError(t, e.srv.HealthCheck(context.Background()))

	resp, err := http.Get("http://" + e.srv.Addr() + "/api/v1/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, e.srv.Close())
}

func TestWebSocket_ReceivesSubscribedNotifications(t *testing.T) {
	e := newEnv(t, withSecret(testSecret))
	e.notifier.Register(e.srv.Hub())

	ts := httptest.NewServer(e.srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err := IssueToken(testSecret, "dashboard", time.Minute)
	require.NoError(t, err)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+token, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	require.NoError(t, conn.WriteJSON(WSMessage{
		Type:    WSTypeSubscribe,
		ID:      "1",
		Payload: WSSubscribePayload{Channels: []string{string(observer.KindDeviceChanged)}},
	}))
	var ack WSMessage
	require.NoError(t, conn.ReadJSON(&ack))
	require.Equal(t, WSTypeResponse, ack.Type)
	assert.Equal(t, "1", ack.ID)
	assert.Equal(t, 1, e.srv.Hub().ClientCount())

	// An event notification is not subscribed and must not arrive first.
	e.notifier.Event(sirenEUI, "not for this client")
	_, err = e.registry.SetAlert(sirenEUI)
	require.NoError(t, err)
	rec := e.do(t, http.MethodDelete, "/api/v1/devices/"+sirenEUI+"/alert", nil, bearer(t)...)
	require.Equal(t, http.StatusOK, rec.Code)

	var msg struct {
		Type      string               `json:"type"`
		EventType string               `json:"event_type"`
		Payload   observer.Notification `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, WSTypeEvent, msg.Type)
	assert.Equal(t, string(observer.KindDeviceChanged), msg.EventType)
	assert.Equal(t, sirenEUI, msg.Payload.DevEUI)
	require.NotNil(t, msg.Payload.Device)
	assert.Equal(t, device.StatusOnline, msg.Payload.Device.Status)
}

func TestWebSocket_Messages(t *testing.T) {
	e := newEnv(t)
	ts := httptest.NewServer(e.srv.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/api/v1/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	tests := []struct {
		name string
		send any
		want string
	}{
		{"ping", WSMessage{Type: WSTypePing, ID: "p"}, WSTypePong},
		{"unknown type", WSMessage{Type: "shout"}, WSTypeError},
		{"unknown channel", WSMessage{Type: WSTypeSubscribe, Payload: WSSubscribePayload{Channels: []string{"metrics"}}}, WSTypeError},
		{"no channels", WSMessage{Type: WSTypeSubscribe, Payload: WSSubscribePayload{}}, WSTypeError},
		{"unsubscribe", WSMessage{Type: WSTypeUnsubscribe, Payload: WSSubscribePayload{Channels: []string{"alert"}}}, WSTypeResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, conn.WriteJSON(tt.send))
			var got WSMessage
			require.NoError(t, conn.ReadJSON(&got))
			assert.Equal(t, tt.want, got.Type)
		})
	}
}
