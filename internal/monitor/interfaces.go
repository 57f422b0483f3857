package monitor

import (
	"context"

	"github.com/nerrad567/lorawatch-core/internal/device"
	"github.com/nerrad567/lorawatch-core/internal/directory"
)

//go:generate mockgen -destination=mock_directory.go -package=monitor github.com/nerrad567/lorawatch-core/internal/monitor Directory

// Directory is the device-management API: ChirpStack in production.
type Directory interface {
	ListDevices(ctx context.Context, applicationID string) ([]device.Descriptor, error)
	ListDeviceProfiles(ctx context.Context) ([]directory.Profile, error)
	CreateDevice(ctx context.Context, nd directory.NewDevice) error
	DeleteDevice(ctx context.Context, devEUI string) error
	EnqueueDownlink(ctx context.Context, devEUI string, data []byte, confirmed bool, fPort uint32) (string, error)
}

// Bus is the MQTT surface the state publisher writes to.
type Bus interface {
	PublishJSON(topic string, v any, retained bool) error
	PublishRetained(topic string, payload []byte) error
}

// Logger defines the logging interface used by the monitor components.
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
