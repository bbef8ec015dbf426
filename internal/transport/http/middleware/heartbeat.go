package httpmw

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type HeartbeatToucher interface {
	TouchHeartbeat(ctx context.Context, roomID string, userID int64) error
}

// HeartbeatMiddleware refreshes last_seen for {roomID,userID} whenever the
// path carries a room id.
func HeartbeatMiddleware(memberSvc HeartbeatToucher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := UserIDFromCtx(r.Context())
			if userID != 0 {
				if roomID := chi.URLParam(r, "id"); roomID != "" {
					// best-effort: errors never fail the request
					_ = memberSvc.TouchHeartbeat(r.Context(), roomID, userID)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
