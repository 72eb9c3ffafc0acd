package handler

import (
	"context"
	"net/http"

	"github.com/unclebandit/acumbamail-sync/internal/model"
	"github.com/unclebandit/acumbamail-sync/internal/service"
)

type TemplateStore interface {
	ListTemplates(ctx context.Context, userID int) ([]model.EmailTemplate, error)
	CreateTemplate(ctx context.Context, userID int, in service.CreateTemplateInput) (*model.EmailTemplate, error)
}

type TemplateHandler struct {
	Service TemplateStore
}

func (h *TemplateHandler) ListTemplatesHandler(w http.ResponseWriter, r *http.Request) {
	templates, err := h.Service.ListTemplates(r.Context(), UserID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteOK(w, templates, "")
}

func (h *TemplateHandler) CreateTemplateHandler(w http.ResponseWriter, r *http.Request) {
	var in service.CreateTemplateInput
	if err := DecodeBody(r, &in); err != nil {
		WriteError(w, err)
		return
	}

	tmpl, err := h.Service.CreateTemplate(r.Context(), UserID(r), in)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteOK(w, tmpl, "template created")
}
