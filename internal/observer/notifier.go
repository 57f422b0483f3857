package observer

import (
	"sync"
	"time"

	"github.com/nerrad567/lorawatch-core/internal/device"
)

// Kind identifies a notification. The values double as WebSocket channel
// names.
type Kind string

// Notification kinds.
const (
	KindDeviceChanged Kind = "device.changed"
	KindDeviceRemoved Kind = "device.removed"
	KindEvent         Kind = "event"
	KindAlert         Kind = "alert"
)

// AllKinds returns every notification kind.
func AllKinds() []Kind {
	return []Kind{KindDeviceChanged, KindDeviceRemoved, KindEvent, KindAlert}
}

// Notification is one change or log line delivered to listeners.
type Notification struct {
	Kind   Kind           `json:"kind"`
	DevEUI string         `json:"dev_eui,omitempty"`
	Device *device.Device `json:"device,omitempty"`
	Text   string         `json:"text,omitempty"`
	Time   time.Time      `json:"time"`
}

// Listener receives notifications. Notify is called synchronously on the
// goroutine that produced the change, so it must return quickly.
type Listener interface {
	Notify(n Notification)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Notification)

// Notify calls f(n).
func (f ListenerFunc) Notify(n Notification) { f(n) }

// Logger defines the logging interface used by the Notifier.
type Logger interface {
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Error(string, ...any) {}

type entry struct {
	id       uint64
	listener Listener
}

// Notifier fans notifications out to registered listeners.
//
// The listener list is copied under a read lock and every listener is
// called after the lock is released, each inside its own recover, so a
// misbehaving listener cannot block registration or starve the others.
type Notifier struct {
	mu        sync.RWMutex
	listeners []entry
	nextID    uint64

	now    func() time.Time
	logger Logger
}

// New creates a Notifier with no listeners.
func New() *Notifier {
	return &Notifier{
		now:    time.Now,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger used to report listener panics.
func (n *Notifier) SetLogger(logger Logger) {
	n.logger = logger
}

// Register adds a listener and returns a function that removes it.
// Listeners are called in registration order.
func (n *Notifier) Register(l Listener) (cancel func()) {
	n.mu.Lock()
	n.nextID++
	id := n.nextID
	n.listeners = append(n.listeners, entry{id: id, listener: l})
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { n.remove(id) })
	}
}

func (n *Notifier) remove(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, e := range n.listeners {
		if e.id == id {
			n.listeners = append(n.listeners[:i:i], n.listeners[i+1:]...)
			return
		}
	}
}

// ListenerCount returns the number of registered listeners.
func (n *Notifier) ListenerCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}

// Publish delivers a notification to every listener. A zero Time is
// stamped with the current time.
func (n *Notifier) Publish(note Notification) {
	if note.Time.IsZero() {
		note.Time = n.now()
	}

	n.mu.RLock()
	listeners := make([]entry, len(n.listeners))
	copy(listeners, n.listeners)
	n.mu.RUnlock()

	for _, e := range listeners {
		n.deliver(e.listener, note)
	}
}

func (n *Notifier) deliver(l Listener, note Notification) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("observer listener panic recovered", "kind", string(note.Kind), "panic", r)
		}
	}()

	// Each listener gets its own copy of the snapshot.
	if note.Device != nil {
		note.Device = note.Device.DeepCopy()
	}
	l.Notify(note)
}

// DeviceChanged announces a new snapshot of d.
func (n *Notifier) DeviceChanged(d *device.Device) {
	if d == nil {
		return
	}
	n.Publish(Notification{Kind: KindDeviceChanged, DevEUI: d.DevEUI, Device: d})
}

// DeviceRemoved announces that devEUI left the registry.
func (n *Notifier) DeviceRemoved(devEUI string) {
	n.Publish(Notification{Kind: KindDeviceRemoved, DevEUI: devEUI})
}

// Event publishes an event-log line. devEUI may be empty.
func (n *Notifier) Event(devEUI, text string) {
	n.Publish(Notification{Kind: KindEvent, DevEUI: devEUI, Text: text})
}

// Alert publishes an alert-log line.
func (n *Notifier) Alert(devEUI, text string) {
	n.Publish(Notification{Kind: KindAlert, DevEUI: devEUI, Text: text})
}
