package handler

import (
	"context"
	"net/http"

	"github.com/unclebandit/acumbamail-sync/internal/model"
)

type ListReader interface {
	ListByUser(ctx context.Context, userID int) ([]model.AcumbamailList, error)
}

type ListHandler struct {
	Repo ListReader
}

func (h *ListHandler) ListListsHandler(w http.ResponseWriter, r *http.Request) {
	lists, err := h.Repo.ListByUser(r.Context(), UserID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteOK(w, lists, "")
}
