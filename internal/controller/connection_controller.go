package controller

import (
	"context"
	"net/http"

	"github.com/unclebandit/acumbamail-sync/internal/handler"
	"github.com/unclebandit/acumbamail-sync/internal/service"
)

type ConnectionTester interface {
	TestConnection(ctx context.Context, userID int, authToken string) (*service.ConnectionStatus, error)
	CheckStoredConnection(ctx context.Context, userID int) (*service.ConnectionStatus, error)
}

type ConnectionController struct {
	ConnectionService ConnectionTester
}

// TestConnection verifies the posted token and stores it on success.
func (c *ConnectionController) TestConnection(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AuthToken string `json:"authToken"`
	}
	if err := handler.DecodeBody(r, &body); err != nil {
		handler.WriteError(w, err)
		return
	}

	status, err := c.ConnectionService.TestConnection(r.Context(), handler.UserID(r), body.AuthToken)
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteOK(w, status, "connection verified and token saved")
}

func (c *ConnectionController) ConnectionStatus(w http.ResponseWriter, r *http.Request) {
	status, err := c.ConnectionService.CheckStoredConnection(r.Context(), handler.UserID(r))
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteOK(w, status, "")
}
