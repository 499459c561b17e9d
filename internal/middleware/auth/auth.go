// Package auth resolves the owner of a request. Tokens are verified by the
// upstream gateway, which forwards the authenticated user id in a header.
package auth

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"finledger/internal/log"
)

// ContextKey type for context keys
type ContextKey string

const (
	// OwnerIDKey is the context key for the authenticated owner id
	OwnerIDKey ContextKey = "owner_id"

	// HeaderUserID carries the authenticated user id.
	HeaderUserID = "X-User-ID"
)

// ParseOwnerID reads the owner id header. ok is false when the header is
// missing or not a positive integer.
func ParseOwnerID(r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Middleware rejects requests without an owner through onUnauthorized and
// otherwise stores the owner id in the context and the request logger.
func Middleware(onUnauthorized func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ownerID, ok := ParseOwnerID(r)
			if !ok {
				onUnauthorized(w, r)
				return
			}

			logger := log.FromContext(r.Context()).With(log.FieldOwnerID, ownerID)
			ctx := context.WithValue(r.Context(), log.LoggerContextKey, logger)
			ctx = WithOwnerID(ctx, ownerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithOwnerID(ctx context.Context, ownerID int64) context.Context {
	return context.WithValue(ctx, OwnerIDKey, ownerID)
}

// OwnerID returns the owner stored by Middleware.
func OwnerID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(OwnerIDKey).(int64)
	return id, ok && id > 0
}
