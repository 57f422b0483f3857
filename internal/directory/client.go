package directory

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/chirpstack/chirpstack/api/go/v4/api"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/nerrad567/lorawatch-core/internal/device"
	"github.com/nerrad567/lorawatch-core/internal/infrastructure/config"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultListLimit = 100
)

// Logger defines the logging interface used by the Client.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Client talks to the ChirpStack v4 gRPC API.
//
// Every call runs under its own timeout and returns one of the package's
// sentinel errors on failure; nothing panics into the caller.
type Client struct {
	conn     *grpc.ClientConn
	devices  api.DeviceServiceClient
	profiles api.DeviceProfileServiceClient

	tenantID  string
	timeout   time.Duration
	listLimit uint32
	logger    Logger
}

// Dial creates a client for cfg.Server. The connection is established
// lazily on the first call, so Dial only fails on bad configuration.
func Dial(cfg config.ChirpStackConfig) (*Client, error) {
	if cfg.Server == "" {
		return nil, fmt.Errorf("%w: chirpstack server is required", ErrInvalidRequest)
	}

	transport := insecure.NewCredentials()
	if cfg.TLS {
		transport = credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	opts := []grpc.DialOption{grpc.WithTransportCredentials(transport)}
	if cfg.APIToken != "" {
		opts = append(opts, grpc.WithPerRPCCredentials(tokenAuth{token: cfg.APIToken, secure: cfg.TLS}))
	}

	conn, err := grpc.NewClient(cfg.Server, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	c := newClient(api.NewDeviceServiceClient(conn), api.NewDeviceProfileServiceClient(conn), cfg)
	c.conn = conn
	return c, nil
}

// newClient wires a Client around existing service stubs.
func newClient(devices api.DeviceServiceClient, profiles api.DeviceProfileServiceClient, cfg config.ChirpStackConfig) *Client {
	c := &Client{
		devices:   devices,
		profiles:  profiles,
		tenantID:  cfg.TenantID,
		timeout:   time.Duration(cfg.Timeout) * time.Second,
		listLimit: uint32(cfg.ListLimit), //nolint:gosec // validated positive in config
		logger:    noopLogger{},
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.listLimit == 0 {
		c.listLimit = defaultListLimit
	}
	return c
}

// SetLogger sets the logger for the client.
func (c *Client) SetLogger(logger Logger) {
	c.logger = logger
}

// Close releases the gRPC connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// HealthCheck reports ErrUnavailable when the connection has failed.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("chirpstack health check: %w", err)
	}
	if c.conn == nil {
		return nil
	}
	switch state := c.conn.GetState(); state {
	case connectivity.TransientFailure, connectivity.Shutdown:
		return fmt.Errorf("%w: connection %s", ErrUnavailable, state)
	default:
		return nil
	}
}

// ListDevices returns every device of an application, paging through
// ChirpStack's results.
func (c *Client) ListDevices(ctx context.Context, applicationID string) ([]device.Descriptor, error) {
	if applicationID == "" {
		return nil, fmt.Errorf("%w: application id is required", ErrInvalidRequest)
	}

	var out []device.Descriptor
	for offset := uint32(0); ; {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, err := c.devices.List(callCtx, &api.ListDevicesRequest{
			ApplicationId: applicationID,
			Limit:         c.listLimit,
			Offset:        offset,
		})
		cancel()
		if err != nil {
			return nil, mapError("list devices", err)
		}

		for _, item := range resp.GetResult() {
			d := device.Descriptor{
				DevEUI:      item.GetDevEui(),
				Name:        item.GetName(),
				Description: item.GetDescription(),
			}
			if ts := item.GetLastSeenAt(); ts != nil {
				t := ts.AsTime()
				d.LastSeenAt = &t
			}
			out = append(out, d)
		}

		offset += uint32(len(resp.GetResult())) //nolint:gosec // bounded by listLimit
		if len(resp.GetResult()) == 0 || offset >= resp.GetTotalCount() {
			break
		}
	}

	c.logger.Info("listed chirpstack devices", "application_id", applicationID, "count", len(out))
	return out, nil
}

// ListDeviceProfiles returns the tenant's device profiles.
func (c *Client) ListDeviceProfiles(ctx context.Context) ([]Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.profiles.List(ctx, &api.ListDeviceProfilesRequest{
		TenantId: c.tenantID,
		Limit:    c.listLimit,
	})
	if err != nil {
		return nil, mapError("list device profiles", err)
	}

	profiles := make([]Profile, 0, len(resp.GetResult()))
	for _, p := range resp.GetResult() {
		profiles = append(profiles, Profile{
			ID:     p.GetId(),
			Name:   p.GetName(),
			Region: p.GetRegion().String(),
		})
	}
	return profiles, nil
}

// CreateDevice provisions a device and its OTAA network key.
//
// If the key cannot be stored the half-created device is deleted again,
// so a retry does not hit ErrAlreadyExists.
func (c *Client) CreateDevice(ctx context.Context, nd NewDevice) error {
	if nd.DevEUI == "" || nd.ApplicationID == "" || nd.ProfileID == "" {
		return fmt.Errorf("%w: dev_eui, application id and profile id are required", ErrInvalidRequest)
	}

	createCtx, cancel := context.WithTimeout(ctx, c.timeout)
	_, err := c.devices.Create(createCtx, &api.CreateDeviceRequest{
		Device: &api.Device{
			DevEui:          nd.DevEUI,
			Name:            nd.Name,
			Description:     string(nd.Class),
			ApplicationId:   nd.ApplicationID,
			DeviceProfileId: nd.ProfileID,
		},
	})
	cancel()
	if err != nil {
		return mapError("create device", err)
	}

	keysCtx, cancel := context.WithTimeout(ctx, c.timeout)
	_, err = c.devices.CreateKeys(keysCtx, &api.CreateDeviceKeysRequest{
		DeviceKeys: &api.DeviceKeys{
			DevEui: nd.DevEUI,
			NwkKey: nd.NwkKey,
		},
	})
	cancel()
	if err != nil {
		keyErr := mapError("create device keys", err)
		if delErr := c.DeleteDevice(ctx, nd.DevEUI); delErr != nil {
			c.logger.Error("rollback of partially created device failed", "dev_eui", nd.DevEUI, "error", delErr)
		}
		return keyErr
	}

	c.logger.Info("chirpstack device created", "dev_eui", nd.DevEUI, "name", nd.Name)
	return nil
}

// DeleteDevice removes a device from ChirpStack.
func (c *Client) DeleteDevice(ctx context.Context, devEUI string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if _, err := c.devices.Delete(ctx, &api.DeleteDeviceRequest{DevEui: devEUI}); err != nil {
		return mapError("delete device", err)
	}
	c.logger.Info("chirpstack device deleted", "dev_eui", devEUI)
	return nil
}

// EnqueueDownlink queues data for devEUI and returns the queue item ID.
// Delivery guarantees are ChirpStack's; nothing is retried here.
func (c *Client) EnqueueDownlink(ctx context.Context, devEUI string, data []byte, confirmed bool, fPort uint32) (string, error) {
	if fPort == 0 || fPort > 223 {
		return "", fmt.Errorf("%w: f_port %d outside 1..223", ErrInvalidRequest, fPort)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.devices.Enqueue(ctx, &api.EnqueueDeviceQueueItemRequest{
		QueueItem: &api.DeviceQueueItem{
			DevEui:    devEUI,
			Confirmed: confirmed,
			FPort:     fPort,
			Data:      data,
		},
	})
	if err != nil {
		return "", mapError("enqueue downlink", err)
	}
	return resp.GetId(), nil
}

// mapError converts a gRPC status into a sentinel error that keeps
// ChirpStack's message.
func mapError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}

	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%s: %w: %w", op, ErrRequestFailed, err)
	}

	var sentinel error
	switch st.Code() {
	case codes.AlreadyExists:
		sentinel = ErrAlreadyExists
	case codes.NotFound:
		sentinel = ErrNotFound
	case codes.Unavailable, codes.DeadlineExceeded:
		sentinel = ErrUnavailable
	default:
		sentinel = ErrRequestFailed
	}
	return fmt.Errorf("%s: %w: %s", op, sentinel, st.Message())
}
