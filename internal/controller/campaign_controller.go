// internal/controller/campaign_controller.go
package controller

import (
	"context"
	"net/http"

	"github.com/unclebandit/acumbamail-sync/internal/handler"
	"github.com/unclebandit/acumbamail-sync/internal/service"
)

type CampaignCreator interface {
	CreateCampaign(ctx context.Context, userID int, in service.CreateCampaignInput) (*service.CampaignOutcome, error)
	SendTestEmail(ctx context.Context, userID int, in service.CreateCampaignInput) (*service.CampaignOutcome, error)
}

type CampaignController struct {
	CampaignService CampaignCreator
}

func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var body service.CreateCampaignInput
	if err := handler.DecodeBody(r, &body); err != nil {
		handler.WriteError(w, err)
		return
	}

	outcome, err := c.CampaignService.CreateCampaign(r.Context(), handler.UserID(r), body)
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteOK(w, outcome, outcome.Dispatch.Message)
}

func (c *CampaignController) SendTestEmail(w http.ResponseWriter, r *http.Request) {
	var body service.CreateCampaignInput
	if err := handler.DecodeBody(r, &body); err != nil {
		handler.WriteError(w, err)
		return
	}

	outcome, err := c.CampaignService.SendTestEmail(r.Context(), handler.UserID(r), body)
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteOK(w, outcome, outcome.Dispatch.Message)
}
