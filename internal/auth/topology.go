package auth

import (
	"fmt"
	"strings"

	"github.com/desertthunder/sonar/internal/shared"
)

// Topology says whether the frontend shares an origin with the API.
type Topology string

const (
	// Local frontends share the API origin and receive tokens as cookies.
	Local Topology = "local"
	// Remote frontends live elsewhere and receive tokens in the redirect URL.
	Remote Topology = "remote"
)

// ParseTopology accepts "local" or "remote" (case-insensitive).
func ParseTopology(s string) (Topology, error) {
	switch Topology(strings.ToLower(strings.TrimSpace(s))) {
	case Local:
		return Local, nil
	case Remote:
		return Remote, nil
	}
	return "", fmt.Errorf("%w: unknown topology %q", shared.ErrInvalidConfig, s)
}

// InferTopology is the fallback when no topology is configured: a frontend
// URL naming localhost or 127.0.0.1 is local.
func InferTopology(frontendURL string) Topology {
	if strings.Contains(frontendURL, "localhost") || strings.Contains(frontendURL, "127.0.0.1") {
		return Local
	}
	return Remote
}

// ResolveTopology prefers the configured value and infers otherwise.
func ResolveTopology(configured, frontendURL string) (Topology, error) {
	if strings.TrimSpace(configured) == "" {
		return InferTopology(frontendURL), nil
	}
	return ParseTopology(configured)
}
