package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/lorawatch-core/internal/device"
	"github.com/nerrad567/lorawatch-core/internal/directory"
	"github.com/nerrad567/lorawatch-core/internal/observer"
)

// ManagerConfig holds the settings the operator actions need.
type ManagerConfig struct {
	ApplicationID string
	Confirmed     bool
	FPort         uint32

	// Timeout bounds each directory call made on behalf of an operator.
	Timeout time.Duration
}

// AddRequest describes a device the operator wants to provision.
type AddRequest struct {
	DevEUI    string       `json:"dev_eui"`
	Name      string       `json:"name"`
	ProfileID string       `json:"profile_id"`
	NwkKey    string       `json:"nwk_key"`
	Class     device.Class `json:"class"`
}

// Manager carries out operator actions: provisioning, removal, alert
// clearing, manual commands and directory reloads. Every change is
// reflected in the registry and announced through the notifier.
type Manager struct {
	registry  *device.Registry
	directory Directory
	notifier  *observer.Notifier
	cfg       ManagerConfig
	logger    Logger
}

// NewManager creates a Manager.
func NewManager(registry *device.Registry, dir Directory, notifier *observer.Notifier, cfg ManagerConfig) *Manager {
	if cfg.FPort == 0 {
		cfg.FPort = DefaultDownlinkFPort
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultFanOutTimeout
	}
	return &Manager{
		registry:  registry,
		directory: dir,
		notifier:  notifier,
		cfg:       cfg,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the manager.
func (m *Manager) SetLogger(logger Logger) {
	m.logger = logger
}

// Registry returns the registry the manager updates.
func (m *Manager) Registry() *device.Registry {
	return m.registry
}

func (m *Manager) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.cfg.Timeout)
}

// AddDevice validates req, provisions the device in the directory and
// registers it locally as never seen.
func (m *Manager) AddDevice(ctx context.Context, req AddRequest) (*device.Device, error) {
	devEUI := device.NormalizeDevEUI(req.DevEUI)
	nwkKey := strings.ToLower(strings.TrimSpace(req.NwkKey))
	name := strings.TrimSpace(req.Name)

	if err := device.ValidateDevEUI(devEUI); err != nil {
		return nil, err
	}
	if err := device.ValidateNwkKey(nwkKey); err != nil {
		return nil, err
	}
	if err := device.ValidateName(name); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ProfileID) == "" {
		return nil, fmt.Errorf("%w: device profile is required", device.ErrInvalidDevice)
	}
	class := req.Class
	if strings.TrimSpace(string(class)) == "" {
		class = device.ClassUnknown
	}

	if _, exists := m.registry.Get(devEUI); exists {
		return nil, fmt.Errorf("%w: %s", device.ErrDeviceExists, devEUI)
	}

	callCtx, cancel := m.callCtx(ctx)
	defer cancel()
	err := m.directory.CreateDevice(callCtx, directory.NewDevice{
		DevEUI:        devEUI,
		Name:          name,
		ProfileID:     req.ProfileID,
		ApplicationID: m.cfg.ApplicationID,
		NwkKey:        nwkKey,
		Class:         class,
	})
	if errors.Is(err, directory.ErrAlreadyExists) {
		return nil, fmt.Errorf("%w: %w", device.ErrDeviceExists, err)
	}
	if err != nil {
		return nil, fmt.Errorf("creating device %s: %w", devEUI, err)
	}

	added, err := m.registry.Add(devEUI, name, class)
	if err != nil {
		return nil, err
	}

	m.logger.Info("device added", "dev_eui", devEUI, "name", name, "class", string(class))
	m.notifier.DeviceChanged(added)
	m.notifier.Event(devEUI, fmt.Sprintf("Device %s - %s added", name, devEUI))
	return added, nil
}

// RemoveDevice deletes the device from the directory and the registry.
// A device the directory no longer knows is still removed locally.
func (m *Manager) RemoveDevice(ctx context.Context, devEUI string) error {
	devEUI = device.NormalizeDevEUI(devEUI)

	existing, ok := m.registry.Get(devEUI)
	if !ok {
		return fmt.Errorf("%w: %s", device.ErrDeviceNotFound, devEUI)
	}

	callCtx, cancel := m.callCtx(ctx)
	defer cancel()
	if err := m.directory.DeleteDevice(callCtx, devEUI); err != nil {
		if !errors.Is(err, directory.ErrNotFound) {
			return fmt.Errorf("deleting device %s: %w", devEUI, err)
		}
		m.logger.Warn("device already absent from directory", "dev_eui", devEUI)
	}

	if err := m.registry.Remove(devEUI); err != nil {
		return err
	}

	m.logger.Info("device removed", "dev_eui", devEUI, "name", existing.Name)
	m.notifier.DeviceRemoved(devEUI)
	m.notifier.Event(devEUI, fmt.Sprintf("Device %s - %s removed", existing.Name, devEUI))
	return nil
}

// ClearAlert unlatches a device's alert. The new status follows LastSeenAt.
func (m *Manager) ClearAlert(devEUI string) (*device.Device, error) {
	devEUI = device.NormalizeDevEUI(devEUI)

	before, ok := m.registry.Get(devEUI)
	if !ok {
		return nil, fmt.Errorf("%w: %s", device.ErrDeviceNotFound, devEUI)
	}

	after, err := m.registry.ClearAlert(devEUI)
	if err != nil {
		return nil, err
	}

	m.logger.Info("alert cleared",
		"dev_eui", devEUI,
		"from", string(before.Status),
		"to", string(after.Status),
	)
	m.notifier.DeviceChanged(after)
	m.notifier.Event(devEUI, fmt.Sprintf("Node %s alert cleared. Status: %s -> %s",
		after.Name, before.Status.Label(), after.Status.Label()))
	return after, nil
}

// SendCommand queues a single command downlink to a registered device and
// returns the directory's queue item ID.
func (m *Manager) SendCommand(ctx context.Context, devEUI string, cmd Command) (string, error) {
	devEUI = device.NormalizeDevEUI(devEUI)

	cmd, err := ParseCommand(string(cmd))
	if err != nil {
		return "", err
	}
	target, ok := m.registry.Get(devEUI)
	if !ok {
		return "", fmt.Errorf("%w: %s", device.ErrDeviceNotFound, devEUI)
	}

	callCtx, cancel := m.callCtx(ctx)
	defer cancel()
	id, err := m.directory.EnqueueDownlink(callCtx, devEUI, cmd.Payload(), m.cfg.Confirmed, m.cfg.FPort)
	if err != nil {
		m.logger.Warn("command downlink failed", "dev_eui", devEUI, "command", string(cmd), "error", err)
		m.notifier.Event(devEUI, cmd.failedLine(target.Name, devEUI, err))
		return "", fmt.Errorf("sending %s to %s: %w", cmd, devEUI, err)
	}

	m.logger.Info("command downlink queued", "dev_eui", devEUI, "command", string(cmd), "queue_item_id", id)
	m.notifier.Event(devEUI, cmd.sentLine(target.Name, devEUI))
	return id, nil
}

// Refresh reloads the registry from the directory, sweeps stale records
// and announces every record. Devices that disappeared from the directory
// are announced as removed. It returns the number of devices loaded.
func (m *Manager) Refresh(ctx context.Context) (int, error) {
	callCtx, cancel := m.callCtx(ctx)
	defer cancel()

	descriptors, err := m.directory.ListDevices(callCtx, m.cfg.ApplicationID)
	if err != nil {
		return 0, fmt.Errorf("listing devices: %w", err)
	}

	previous := m.registry.All()
	loaded := m.registry.LoadAll(descriptors)
	m.registry.SweepStale(m.registry.Now())

	for _, old := range previous {
		if _, ok := m.registry.Get(old.DevEUI); !ok {
			m.notifier.DeviceRemoved(old.DevEUI)
		}
	}
	current := m.registry.All()
	for i := range current {
		m.notifier.DeviceChanged(&current[i])
	}

	m.logger.Info("device list refreshed", "application_id", m.cfg.ApplicationID, "devices", loaded)
	return loaded, nil
}

// Profiles lists the device profiles available for provisioning.
func (m *Manager) Profiles(ctx context.Context) ([]directory.Profile, error) {
	callCtx, cancel := m.callCtx(ctx)
	defer cancel()

	profiles, err := m.directory.ListDeviceProfiles(callCtx)
	if err != nil {
		return nil, fmt.Errorf("listing device profiles: %w", err)
	}
	return profiles, nil
}
