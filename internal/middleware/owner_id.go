package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lessonloop/ingest-ms-go/internal/api_context"
	"github.com/lessonloop/ingest-ms-go/internal/handler/api"
	"github.com/lessonloop/ingest-ms-go/internal/uuid"
)

// OwnerIDHeader carries the authenticated caller's identity, attached by
// the upstream API gateway.
const OwnerIDHeader = "X-Owner-ID"

func WithOwnerID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(OwnerIDHeader)
			if raw == "" {
				api.WriteError(w, http.StatusBadRequest, "owner ID is required", nil)
				return
			}
			ownerID, err := uuid.Parse(raw)
			if err != nil {
				api.WriteError(w, http.StatusBadRequest, fmt.Sprintf("owner ID %q is not a valid UUID", raw), nil)
				return
			}

			ctx := context.WithValue(r.Context(), api_context.OwnerIDKey, ownerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
