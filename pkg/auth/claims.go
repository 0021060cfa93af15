package auth

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data used when minting a token locally,
// e.g. for tests or a dev identity stub.
type AccessTokenPayload struct {
	Subject string
	Email   string
	Name    string
}

// HostedClaims is the access token issued by the hosted identity provider.
// Role is the provider's role ("authenticated"), not the application role.
type HostedClaims struct {
	Email        string         `json:"email,omitempty"`
	Role         string         `json:"role,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

// DisplayName returns the best effort human name carried in user_metadata.
func (c *HostedClaims) DisplayName() string {
	if c == nil {
		return ""
	}
	for _, key := range []string{"full_name", "name", "nombre"} {
		if raw, ok := c.UserMetadata[key].(string); ok {
			if name := strings.TrimSpace(raw); name != "" {
				return name
			}
		}
	}
	return ""
}
