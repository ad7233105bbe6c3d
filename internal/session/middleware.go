package session

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const Header = "X-Session-ID"

type contextKey string

const idKey contextKey = "session_id"

func ContextWithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, idKey, id)
}

func IDFromContext(ctx context.Context) string {
	id, ok := ctx.Value(idKey).(string)
	if !ok {
		return ""
	}
	return id
}

// Middleware takes the session ID from the X-Session-ID header, issuing a new
// one when it is missing or not a UUID, and echoes it on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(ContextWithID(r.Context(), id)))
	})
}
