package device

import (
	"fmt"
	"sync"
	"time"
)

// DefaultStalenessWindow is how long a silent device is still considered online.
const DefaultStalenessWindow = 10 * time.Minute

// Logger defines the logging interface used by the Registry.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry is the single source of truth for device state.
//
// One RWMutex guards the record map and the insertion order. Stored
// records are replaced, never mutated, and every read hands out a deep
// copy, so readers never observe a torn record. No method performs I/O
// or calls foreign code while holding the lock.
//
// All public methods are thread-safe.
type Registry struct {
	mu      sync.RWMutex
	records map[string]*Device
	order   []string

	window time.Duration
	now    func() time.Time
	logger Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithStalenessWindow overrides DefaultStalenessWindow.
func WithStalenessWindow(window time.Duration) Option {
	return func(r *Registry) {
		if window > 0 {
			r.window = window
		}
	}
}

// WithClock replaces time.Now. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRegistry creates an empty device registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		records: make(map[string]*Device),
		window:  DefaultStalenessWindow,
		now:     time.Now,
		logger:  noopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// Window returns the staleness window.
func (r *Registry) Window() time.Duration {
	return r.window
}

// Now returns the registry clock's current time.
func (r *Registry) Now() time.Time {
	return r.now()
}

// IsOnline reports whether d was seen within the staleness window ending at now.
func (r *Registry) IsOnline(d *Device, now time.Time) bool {
	return d != nil && d.LastSeenAt != nil && fresh(*d.LastSeenAt, now, r.window)
}

// LoadAll replaces the entire record set with the given descriptors and
// returns the number of records loaded.
//
// Initial status comes from the last-seen hint: Online inside the window,
// Offline outside it, NeverSeen without one. Descriptors without a DevEUI
// are skipped. A repeated DevEUI replaces the earlier record in place.
func (r *Registry) LoadAll(descriptors []Descriptor) int {
	now := r.now()

	records := make(map[string]*Device, len(descriptors))
	order := make([]string, 0, len(descriptors))
	skipped := 0

	for i := range descriptors {
		desc := descriptors[i]
		if desc.DevEUI == "" {
			skipped++
			continue
		}

		d := &Device{
			DevEUI: desc.DevEUI,
			Name:   desc.Name,
			Class:  ParseClass(desc.Description),
			Status: deriveStatus(desc.LastSeenAt, now, r.window),
		}
		if desc.LastSeenAt != nil {
			t := *desc.LastSeenAt
			d.LastSeenAt = &t
		}

		if _, dup := records[d.DevEUI]; !dup {
			order = append(order, d.DevEUI)
		}
		records[d.DevEUI] = d
	}

	r.mu.Lock()
	r.records = records
	r.order = order
	r.mu.Unlock()

	if skipped > 0 {
		r.logger.Warn("skipped descriptors without DevEUI", "count", skipped)
	}
	r.logger.Info("devices loaded", "count", len(order))
	return len(order)
}

// Add registers a new device in the NeverSeen state.
// Returns ErrDeviceExists if the DevEUI is already registered.
func (r *Registry) Add(devEUI, name string, class Class) (*Device, error) {
	if devEUI == "" {
		return nil, fmt.Errorf("%w: DevEUI is required", ErrInvalidDevice)
	}
	if class == "" {
		class = ClassUnknown
	}

	d := &Device{
		DevEUI: devEUI,
		Name:   name,
		Class:  class,
		Status: StatusNeverSeen,
	}

	r.mu.Lock()
	if _, exists := r.records[devEUI]; exists {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrDeviceExists, devEUI)
	}
	r.records[devEUI] = d
	r.order = append(r.order, devEUI)
	r.mu.Unlock()

	r.logger.Info("device added", "dev_eui", devEUI, "name", name, "class", string(class))
	return d.DeepCopy(), nil
}

// Remove deletes a device. Returns ErrDeviceNotFound if it is not registered.
func (r *Registry) Remove(devEUI string) error {
	r.mu.Lock()
	_, exists := r.records[devEUI]
	if exists {
		delete(r.records, devEUI)
		for i, id := range r.order {
			if id == devEUI {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	r.mu.Unlock()

	if !exists {
		r.logger.Warn("remove of unknown device", "dev_eui", devEUI)
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, devEUI)
	}

	r.logger.Info("device removed", "dev_eui", devEUI)
	return nil
}

// Get returns a snapshot of one device.
func (r *Registry) Get(devEUI string) (*Device, bool) {
	r.mu.RLock()
	d, ok := r.records[devEUI]
	r.mu.RUnlock()

	if !ok {
		return nil, false
	}
	return d.DeepCopy(), true
}

// All returns snapshots of every device in insertion order.
func (r *Registry) All() []Device {
	return r.Select(nil)
}

// Select returns snapshots of the devices matching pred, in insertion
// order. A nil pred matches everything. The whole selection is taken
// under one read lock.
func (r *Registry) Select(pred func(*Device) bool) []Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	devices := make([]Device, 0, len(r.order))
	for _, id := range r.order {
		d := r.records[id]
		if pred == nil || pred(d) {
			devices = append(devices, *d.DeepCopy())
		}
	}
	return devices
}

// Count returns the number of registered devices.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Stats returns current registry statistics.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Stats{
		Total:    len(r.records),
		ByStatus: make(map[Status]int),
		ByClass:  make(map[Class]int),
	}
	for _, d := range r.records {
		stats.ByStatus[d.Status]++
		stats.ByClass[d.Class]++
		if d.HasActiveAlert() {
			stats.ActiveAlerts++
		}
	}
	return stats
}

// ApplyTelemetry records a status observation and radio metrics.
//
// Metrics and LastSeenAt always update; the metrics are replaced, so a nil
// value clears the previous reading. Status follows the observation unless
// an alert is latched. An Online observation outside the staleness window
// is recorded as Offline. Alert cannot be set this way.
func (r *Registry) ApplyTelemetry(devEUI string, t Telemetry) (*Device, error) {
	if t.Status == StatusAlert || t.Status == "" {
		return nil, fmt.Errorf("%w: telemetry cannot set %q", ErrInvalidStatus, t.Status)
	}

	now := r.now()
	return r.update(devEUI, "apply telemetry", func(d *Device) {
		if t.ObservedAt != nil {
			seen := *t.ObservedAt
			d.LastSeenAt = &seen
		}
		d.RSSI = copyInt(t.RSSI)
		d.SNR = copyFloat(t.SNR)
		d.Status = observe(d.Status, t.Status, d.LastSeenAt, now, r.window)
	})
}

// MarkSeenNow stamps LastSeenAt with the current time and moves the device
// Online unless an alert is latched.
func (r *Registry) MarkSeenNow(devEUI string) (*Device, error) {
	now := r.now()
	return r.update(devEUI, "mark seen", func(d *Device) {
		d.LastSeenAt = &now
		d.Status = observe(d.Status, StatusOnline, d.LastSeenAt, now, r.window)
	})
}

// SetAlert latches the alert state. Idempotent.
func (r *Registry) SetAlert(devEUI string) (*Device, error) {
	return r.update(devEUI, "set alert", func(d *Device) {
		d.Status = raiseAlert(d.Status)
	})
}

// ClearAlert unlatches the alert and recomputes Online or Offline from
// LastSeenAt. Calling it on a device without an alert just recomputes.
func (r *Registry) ClearAlert(devEUI string) (*Device, error) {
	now := r.now()
	return r.update(devEUI, "clear alert", func(d *Device) {
		d.Status = clearAlert(d.LastSeenAt, now, r.window)
	})
}

// MarkOffline moves the device Offline unless an alert is latched.
func (r *Registry) MarkOffline(devEUI string) (*Device, error) {
	now := r.now()
	return r.update(devEUI, "mark offline", func(d *Device) {
		d.Status = observe(d.Status, StatusOffline, d.LastSeenAt, now, r.window)
	})
}

// SweepStale demotes every device that is not online, is not already
// Offline and has no active alert. A device that was never seen is not
// online, so it is demoted too. Check and set happen under the write
// lock, so a concurrent MarkSeenNow is never overwritten with a stale
// decision.
//
// A panic while evaluating one record is logged and the sweep continues. The demoted records are
// returned as snapshots for notification after the lock is released.
func (r *Registry) SweepStale(now time.Time) []Device {
	var demoted []Device

	r.mu.Lock()
	for _, id := range r.order {
		if d := r.sweepOne(id, now); d != nil {
			demoted = append(demoted, *d)
		}
	}
	r.mu.Unlock()

	return demoted
}

// sweepOne evaluates a single record. Caller holds r.mu.
func (r *Registry) sweepOne(id string, now time.Time) (out *Device) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("sweep of device failed", "dev_eui", id, "panic", rec)
			out = nil
		}
	}()

	d := r.records[id]
	if d.Status == StatusOffline || d.HasActiveAlert() || r.IsOnline(d, now) {
		return nil
	}

	next := d.DeepCopy()
	next.Status = StatusOffline
	r.records[id] = next
	return next.DeepCopy()
}

// update replaces the record for devEUI with a modified copy and returns
// a snapshot of the result.
func (r *Registry) update(devEUI, op string, mutate func(*Device)) (*Device, error) {
	r.mu.Lock()
	current, ok := r.records[devEUI]
	if !ok {
		r.mu.Unlock()
		r.logger.Warn("device not registered", "op", op, "dev_eui", devEUI)
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, devEUI)
	}

	next := current.DeepCopy()
	mutate(next)
	r.records[devEUI] = next
	snapshot := next.DeepCopy()
	r.mu.Unlock()

	return snapshot, nil
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
