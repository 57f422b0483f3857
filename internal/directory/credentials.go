package directory

import "context"

// tokenAuth attaches the ChirpStack API token to every RPC.
type tokenAuth struct {
	token  string
	secure bool
}

// GetRequestMetadata implements credentials.PerRPCCredentials.
func (t tokenAuth) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	return map[string]string{"authorization": "Bearer " + t.token}, nil
}

// RequireTransportSecurity implements credentials.PerRPCCredentials.
// The token is only forced onto TLS when TLS is configured; plain-text
// deployments sit on a private network next to ChirpStack.
func (t tokenAuth) RequireTransportSecurity() bool {
	return t.secure
}
