package monitor

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/nerrad567/lorawatch-core/internal/device"
	"github.com/nerrad567/lorawatch-core/internal/observer"
)

const (
	euiSiren   = "a000000000000001"
	euiRanger  = "b000000000000002"
	euiGateway = "c000000000000003"
	euiBadge   = "d000000000000004"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func timePtr(t time.Time) *time.Time { return &t }

// recorder collects every notification it receives.
type recorder struct {
	mu    sync.Mutex
	notes []observer.Notification
}

func (r *recorder) Notify(n observer.Notification) {
	r.mu.Lock()
	r.notes = append(r.notes, n)
	r.mu.Unlock()
}

func (r *recorder) ofKind(kind observer.Kind) []observer.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []observer.Notification
	for _, n := range r.notes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

func (r *recorder) texts(kind observer.Kind) []string {
	var out []string
	for _, n := range r.ofKind(kind) {
		out = append(out, n.Text)
	}
	return out
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notes)
}

type fixture struct {
	clock    *fakeClock
	registry *device.Registry
	notifier *observer.Notifier
	dir      *MockDirectory
	rec      *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	clock := newFakeClock()

	f := &fixture{
		clock:    clock,
		registry: device.NewRegistry(device.WithClock(clock.Now)),
		notifier: observer.New(),
		dir:      NewMockDirectory(ctrl),
		rec:      &recorder{},
	}
	f.notifier.Register(f.rec)
	return f
}

// loadSite loads a siren seen just now, a ranger never seen, a gateway of
// unknown class seen just now and a wearable seen just now.
func (f *fixture) loadSite() {
	now := f.clock.Now()
	f.registry.LoadAll([]device.Descriptor{
		{DevEUI: euiSiren, Name: "Siren", Description: "Sound Unit", LastSeenAt: timePtr(now)},
		{DevEUI: euiRanger, Name: "Ranger", Description: "LiDAR unit"},
		{DevEUI: euiGateway, Name: "Relay", Description: "", LastSeenAt: timePtr(now)},
		{DevEUI: euiBadge, Name: "Badge", Description: "Wearable Alert Unit", LastSeenAt: timePtr(now)},
	})
}

func (f *fixture) status(t *testing.T, devEUI string) device.Status {
	t.Helper()
	d, ok := f.registry.Get(devEUI)
	if !ok {
		t.Fatalf("device %s not registered", devEUI)
	}
	return d.Status
}

func eventTopic(devEUI, event string) string {
	return fmt.Sprintf("application/app-1/device/%s/event/%s", devEUI, event)
}

func uplinkPayload(devEUI, name, message string) []byte {
	return []byte(fmt.Sprintf(`{
		"deviceInfo": {"applicationId": "app-1", "devEui": %q, "deviceName": %q},
		"fPort": 10,
		"object": {"message": %q},
		"rxInfo": [{"gatewayId": "aa555a0000000000", "rssi": -97, "snr": 7.5}]
	}`, devEUI, name, message))
}
