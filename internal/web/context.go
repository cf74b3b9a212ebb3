package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/qubit/internal/core"
)

// withRequestMetadata copies the caller address and API key id into ctx for
// service-side logging. RemoteAddr has already been rewritten by
// TrustedRealIP.
func withRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithClientIP(ctx, r.RemoteAddr)
	if key := r.Header.Get("X-API-Key"); key != "" {
		ctx = core.ContextWithClientID(ctx, keyID(key))
	}
	return ctx
}

// keyID identifies an API key in logs without revealing it.
func keyID(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
