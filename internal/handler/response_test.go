package handler_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unclebandit/acumbamail-sync/internal/acumbamail"
	appErrors "github.com/unclebandit/acumbamail-sync/internal/errors"
	"github.com/unclebandit/acumbamail-sync/internal/handler"
)

func TestStatusFor(t *testing.T) {
	cases := map[string]struct {
		err  error
		want int
	}{
		"validation":      {appErrors.NewValidation("name", "is required"), http.StatusBadRequest},
		"not configured":  {fmt.Errorf("sync: %w", appErrors.ErrNotConfigured), http.StatusBadRequest},
		"not found":       {appErrors.NewListNotFound(3), http.StatusNotFound},
		"sync in flight":  {appErrors.ErrSyncInProgress, http.StatusConflict},
		"duplicate":       {errors.Join(appErrors.ErrDuplicate, errors.New("23505")), http.StatusConflict},
		"transport":       {&acumbamail.TransportError{Endpoint: "getLists", StatusCode: 500, Body: "oops"}, http.StatusBadGateway},
		"send":            {&acumbamail.SendError{CampaignID: "1", Err: errors.New("boom")}, http.StatusBadGateway},
		"capability":      {&acumbamail.CapabilityError{Capability: "stats", Err: errors.New("no")}, http.StatusBadGateway},
		"everything else": {errors.New("db down"), http.StatusInternalServerError},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, handler.StatusFor(tc.err))
		})
	}
}

func TestRequireUser(t *testing.T) {
	var seen int
	h := handler.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = handler.UserID(r)
	}))

	for _, header := range []string{"", "abc", "0", "-4"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(handler.UserHeader, header)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
	}
	assert.Zero(t, seen)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(handler.UserHeader, "42")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, 42, seen)
}
