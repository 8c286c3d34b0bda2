package main

import (
	"context"
	"crypto/tls"
	"net/http"

	"github.com/gin-gonic/gin"

	apiv1 "github.com/SanjoDeundiak/devpanel/api/v1"
)

type spiffeIdContextKey struct{}

func extractSpiffeIdFromContext(ctx context.Context) *string {
	if v := ctx.Value(spiffeIdContextKey{}); v != nil {
		if spiffeId, ok := v.(string); ok {
			return &spiffeId
		}
	}
	return nil
}

func extractSpiffeIdFromTls(ctx context.Context, state *tls.ConnectionState) *string {
	// First, check if it was already injected into context.
	if v := extractSpiffeIdFromContext(ctx); v != nil {
		return v
	}

	if state == nil || len(state.PeerCertificates) == 0 || state.PeerCertificates[0] == nil {
		return nil
	}

	leaf := state.PeerCertificates[0]

	// Find the first SPIFFE URI SAN
	for _, uri := range leaf.URIs {
		if uri == nil {
			continue
		}
		if uri.Scheme == "spiffe" {
			// Return trust domain (host) part as our ID, e.g., spiffe://client1 -> "client1"
			return &uri.Host
		}
	}

	return nil
}

func injectSpiffeId(ctx context.Context, spiffeId string) context.Context {
	return context.WithValue(ctx, spiffeIdContextKey{}, spiffeId)
}

// requireSpiffeId rejects requests whose client certificate carries no SPIFFE
// ID and stores the ID in the request context. Plain HTTP requests pass
// through without an identity.
func requireSpiffeId() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.TLS == nil {
			c.Next()
			return
		}

		spiffeId := extractSpiffeIdFromTls(c.Request.Context(), c.Request.TLS)
		if spiffeId == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiv1.ErrorResponse{Error: "client must have SPIFFE ID"})
			return
		}

		c.Request = c.Request.WithContext(injectSpiffeId(c.Request.Context(), *spiffeId))
		c.Next()
	}
}

// checkOwnership allows the call when no owner is recorded or when the caller
// is the identity that started the running panel. Callers hold s.mu.
func (s *PanelServer) checkOwnership(ctx context.Context) (int, string) {
	if s.owner == "" || !s.coord.Running() {
		return 0, ""
	}

	spiffeId := extractSpiffeIdFromContext(ctx)
	if spiffeId == nil {
		return http.StatusUnauthorized, "client must have SPIFFE ID"
	}
	if s.owner != *spiffeId {
		return http.StatusForbidden, "Only original owner can access the resource"
	}
	return 0, ""
}
