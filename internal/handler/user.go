package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/unclebandit/acumbamail-sync/internal/model"
)

// UserHeader is set by the upstream auth layer.
const UserHeader = "X-User-ID"

type userKey struct{}

// RequireUser rejects requests without a valid user id and stores it in the context.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(r.Header.Get(UserHeader))
		if err != nil || id <= 0 {
			WriteJSON(w, http.StatusUnauthorized, model.Envelope{Error: "unauthorized"})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id)))
	})
}

func WithUserID(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, userKey{}, id)
}

// UserID returns the authenticated user id, or 0 outside RequireUser.
func UserID(r *http.Request) int {
	id, _ := r.Context().Value(userKey{}).(int)
	return id
}
