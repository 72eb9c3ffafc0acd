package controller

import (
	"context"
	"fmt"
	"net/http"

	"github.com/unclebandit/acumbamail-sync/internal/acumbamail"
	"github.com/unclebandit/acumbamail-sync/internal/handler"
	"github.com/unclebandit/acumbamail-sync/internal/service"
)

type TemplateImporter interface {
	ListAvailableRemoteTemplates(ctx context.Context, userID int) ([]acumbamail.RemoteTemplate, error)
	ImportTemplates(ctx context.Context, userID int, templateIDs []string) (*service.ImportResult, error)
}

type TemplateController struct {
	TemplateService TemplateImporter
}

func (c *TemplateController) AvailableTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := c.TemplateService.ListAvailableRemoteTemplates(r.Context(), handler.UserID(r))
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteOK(w, templates, "")
}

func (c *TemplateController) ImportTemplates(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TemplateIDs []acumbamail.RemoteID `json:"templateIds"`
	}
	if err := handler.DecodeBody(r, &body); err != nil {
		handler.WriteError(w, err)
		return
	}

	ids := make([]string, 0, len(body.TemplateIDs))
	for _, id := range body.TemplateIDs {
		ids = append(ids, id.String())
	}

	result, err := c.TemplateService.ImportTemplates(r.Context(), handler.UserID(r), ids)
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	message := fmt.Sprintf("Imported %d templates", result.Imported)
	if len(result.Errors) > 0 {
		message += fmt.Sprintf(" (%d errors)", len(result.Errors))
	}
	handler.WriteOK(w, result, message)
}
