package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/unclebandit/acumbamail-sync/internal/handler"
)

// Routes groups every endpoint the service exposes.
type Routes struct {
	Connection *ConnectionController
	Sync       *SyncController
	Campaigns  *CampaignController
	Templates  *TemplateController
	Lists      *ListController

	CampaignHandler *handler.CampaignHandler
	ListHandler     *handler.ListHandler
	TemplateHandler *handler.TemplateHandler
}

func NewRouter(rt Routes) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		handler.WriteOK(w, nil, "ok")
	})

	r.Route("/acumbamail", func(r chi.Router) {
		r.Use(handler.RequireUser)

		r.Get("/test-connection", rt.Connection.ConnectionStatus)
		r.Post("/test-connection", rt.Connection.TestConnection)

		r.Post("/sync", rt.Sync.Sync)
		r.Post("/sync/async", rt.Sync.SyncAsync)
		r.Get("/sync/history", rt.Sync.History)

		r.Post("/campaigns", rt.Campaigns.CreateCampaign)
		r.Get("/campaigns", rt.CampaignHandler.ListCampaignsHandler)
		r.Get("/campaigns/{id}/stats", rt.CampaignHandler.GetCampaignStatsHandler)
		r.Post("/test-email", rt.Campaigns.SendTestEmail)

		r.Get("/available-templates", rt.Templates.AvailableTemplates)
		r.Post("/import-templates", rt.Templates.ImportTemplates)
		r.Get("/templates", rt.TemplateHandler.ListTemplatesHandler)
		r.Post("/templates", rt.TemplateHandler.CreateTemplateHandler)

		r.Get("/lists", rt.ListHandler.ListListsHandler)
		r.Post("/lists", rt.Lists.CreateList)
		r.Post("/lists/{id}/subscribers", rt.Lists.AddSubscribers)
	})
	return r
}
