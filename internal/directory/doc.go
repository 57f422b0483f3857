// Package directory is the client for the device directory: ChirpStack's
// v4 gRPC API.
//
// It lists, creates and deletes devices, lists device profiles and
// enqueues downlinks. Calls authenticate with an API token sent as
// "authorization: Bearer <token>" and each runs under the configured
// timeout. gRPC status codes are mapped to ErrAlreadyExists, ErrNotFound,
// ErrUnavailable and ErrRequestFailed.
//
//	client, err := directory.Dial(cfg.ChirpStack)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	devices, err := client.ListDevices(ctx, cfg.ChirpStack.ApplicationID)
package directory
