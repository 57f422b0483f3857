package monitor

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/lorawatch-core/internal/device"
	"github.com/nerrad567/lorawatch-core/internal/observer"
)

// Fan-out defaults.
const (
	DefaultFanOutConcurrency = 4
	DefaultDownlinkFPort     = 10
	defaultFanOutTimeout     = 30 * time.Second
)

// FanOutConfig controls how an alert is relayed.
type FanOutConfig struct {
	// Classes receive the alert response. Defaults to device.AlertTargetClasses().
	Classes []device.Class

	Confirmed   bool
	FPort       uint32
	Concurrency int

	// Timeout bounds one whole fan-out.
	Timeout time.Duration
}

// DispatchResult is the outcome of one alert downlink.
type DispatchResult struct {
	DevEUI      string `json:"dev_eui"`
	Name        string `json:"name"`
	QueueItemID string `json:"queue_item_id,omitempty"`
	Err         error  `json:"-"`
}

// FanOut sends the Alert Response command to every target device when any
// device raises an alert.
//
// Every target is attempted regardless of earlier failures. There is no
// retry and no rollback; each result is reported as an event line.
type FanOut struct {
	registry  *device.Registry
	directory Directory
	notifier  *observer.Notifier
	cfg       FanOutConfig
	logger    Logger

	wg sync.WaitGroup
}

// NewFanOut creates a FanOut with defaults applied to cfg.
func NewFanOut(registry *device.Registry, dir Directory, notifier *observer.Notifier, cfg FanOutConfig) *FanOut {
	if len(cfg.Classes) == 0 {
		cfg.Classes = device.AlertTargetClasses()
	}
	if cfg.FPort == 0 {
		cfg.FPort = DefaultDownlinkFPort
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = DefaultFanOutConcurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultFanOutTimeout
	}
	return &FanOut{
		registry:  registry,
		directory: dir,
		notifier:  notifier,
		cfg:       cfg,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the fan-out.
func (f *FanOut) SetLogger(logger Logger) {
	f.logger = logger
}

// Targets returns a snapshot of the devices whose class receives alerts.
func (f *FanOut) Targets() []device.Device {
	return f.registry.Select(func(d *device.Device) bool {
		return slices.Contains(f.cfg.Classes, d.Class)
	})
}

// Dispatch sends the Alert Response to every target and blocks until all
// attempts finish. Results are in target order.
func (f *FanOut) Dispatch(ctx context.Context, source device.Device) []DispatchResult {
	targets := f.Targets()
	results := make([]DispatchResult, len(targets))
	cmd := CommandAlertResponse

	var g errgroup.Group
	g.SetLimit(f.cfg.Concurrency)

	for i := range targets {
		target := targets[i]
		g.Go(func() error {
			res := f.send(ctx, target, cmd)
			results[i] = res

			if res.Err != nil {
				f.logger.Warn("alert downlink failed", "source", source.DevEUI, "dev_eui", target.DevEUI, "error", res.Err)
				f.notifier.Event(target.DevEUI, cmd.failedLine(target.Name, target.DevEUI, res.Err))
				return nil
			}
			f.notifier.Event(target.DevEUI, cmd.sentLine(target.Name, target.DevEUI))
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	f.logger.Info("alert fan-out complete",
		"source", source.DevEUI,
		"targets", len(targets),
		"failed", failed,
	)
	return results
}

// send issues one downlink. A panic in the directory call becomes the
// target's error so the remaining targets are still attempted.
func (f *FanOut) send(ctx context.Context, target device.Device, cmd Command) (res DispatchResult) {
	res = DispatchResult{DevEUI: target.DevEUI, Name: target.Name}
	defer func() {
		if rec := recover(); rec != nil {
			res.QueueItemID = ""
			res.Err = fmt.Errorf("%w: %v", ErrHandlerPanic, rec)
		}
	}()

	res.QueueItemID, res.Err = f.directory.EnqueueDownlink(ctx, target.DevEUI, cmd.Payload(), f.cfg.Confirmed, f.cfg.FPort)
	return res
}

// Trigger runs Dispatch in the background. Wait blocks until every
// triggered fan-out has finished.
func (f *FanOut) Trigger(source device.Device) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				f.logger.Error("alert fan-out panic recovered", "source", source.DevEUI, "panic", rec)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), f.cfg.Timeout)
		defer cancel()
		f.Dispatch(ctx, source)
	}()
}

// Wait blocks until all triggered fan-outs have finished.
func (f *FanOut) Wait() {
	f.wg.Wait()
}
