package grpc

import (
	"context"
	"strings"
)

// AuthorizationHeader is the metadata key carrying bearer session tokens.
const AuthorizationHeader = "authorization"

// BearerToken attaches a session token to every call made with it.
type BearerToken struct {
	Token string
	// AllowInsecure permits sending the token over plaintext connections,
	// which local development and in-process tests use.
	AllowInsecure bool
}

// GetRequestMetadata implements credentials.PerRPCCredentials.
func (b BearerToken) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	token := strings.TrimSpace(b.Token)
	if token == "" {
		return map[string]string{}, nil
	}
	return map[string]string{AuthorizationHeader: "Bearer " + token}, nil
}

// RequireTransportSecurity implements credentials.PerRPCCredentials.
func (b BearerToken) RequireTransportSecurity() bool {
	return !b.AllowInsecure
}

// ParseBearer extracts the token from an "authorization" value. It returns
// false when the value is not a bearer credential.
func ParseBearer(value string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(value), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
