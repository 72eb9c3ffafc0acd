// internal/handler/campaign_handler.go
package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/unclebandit/acumbamail-sync/internal/errors"
	"github.com/unclebandit/acumbamail-sync/internal/model"
)

type CampaignLister interface {
	ListCampaigns(ctx context.Context, userID, page, pageSize int, status string) ([]*model.EmailCampaign, map[string]int, error)
	CampaignStats(ctx context.Context, userID, campaignID int) (map[string]any, error)
}

// CampaignHandler serves the locally stored campaigns
type CampaignHandler struct {
	Service CampaignLister
}

// ListCampaignsHandler returns a paginated list of campaigns
func (h *CampaignHandler) ListCampaignsHandler(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	status := r.URL.Query().Get("status")

	campaigns, pagination, err := h.Service.ListCampaigns(r.Context(), UserID(r), page, pageSize, status)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteOK(w, map[string]any{
		"campaigns":  campaigns,
		"pagination": pagination,
	}, "")
}

// GetCampaignStatsHandler returns the remote statistics of one campaign
func (h *CampaignHandler) GetCampaignStatsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, appErrors.NewValidation("id", "invalid campaign id"))
		return
	}

	log.Println("📥 Stats requested for campaign ID:", id)

	stats, err := h.Service.CampaignStats(r.Context(), UserID(r), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteOK(w, stats, "")
}
