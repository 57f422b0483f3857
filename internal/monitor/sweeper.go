package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/lorawatch-core/internal/device"
	"github.com/nerrad567/lorawatch-core/internal/observer"
)

// DefaultSweepInterval is how often the sweeper checks for stale devices.
const DefaultSweepInterval = 60 * time.Second

// Sweeper periodically moves devices that have gone quiet to Offline.
type Sweeper struct {
	registry *device.Registry
	notifier *observer.Notifier
	interval time.Duration
	logger   Logger

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewSweeper creates a sweeper. A non-positive interval uses DefaultSweepInterval.
func NewSweeper(registry *device.Registry, notifier *observer.Notifier, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		registry: registry,
		notifier: notifier,
		interval: interval,
		logger:   noopLogger{},
		done:     make(chan struct{}),
	}
}

// SetLogger sets the logger for the sweeper.
func (s *Sweeper) SetLogger(logger Logger) {
	s.logger = logger
}

// Start begins periodic sweeping. It runs until ctx is cancelled or Stop
// is called.
func (s *Sweeper) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.sweepLoop(ctx)
	s.logger.Info("staleness sweeper started",
		"interval", s.interval.String(),
		"window", s.registry.Window().String(),
	)
}

// Stop halts the sweeper and waits for the loop to exit.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
	s.logger.Info("staleness sweeper stopped")
}

func (s *Sweeper) sweepLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.SweepNow()
		}
	}
}

// SweepNow runs one sweep and returns the demoted records. A failure
// inside the sweep is logged and swallowed.
func (s *Sweeper) SweepNow() (demoted []device.Device) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("error checking offline devices", "panic", rec)
		}
	}()

	demoted = s.registry.SweepStale(s.registry.Now())
	for i := range demoted {
		d := &demoted[i]
		s.logger.Info("device offline", "dev_eui", d.DevEUI, "name", d.Name)
		s.notifier.DeviceChanged(d)
		s.notifier.Event(d.DevEUI, fmt.Sprintf("Device %s - %s went offline", d.Name, d.DevEUI))
	}
	return demoted
}
