package controller

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/unclebandit/acumbamail-sync/internal/errors"
	"github.com/unclebandit/acumbamail-sync/internal/handler"
	"github.com/unclebandit/acumbamail-sync/internal/model"
	"github.com/unclebandit/acumbamail-sync/internal/service"
)

type ListManager interface {
	CreateList(ctx context.Context, userID int, in service.CreateListInput) (*model.AcumbamailList, error)
	AddSubscribers(ctx context.Context, userID, listID int, subs []service.NewSubscriber) (*service.AddSubscribersResult, error)
}

type ListController struct {
	ListService ListManager
}

func (c *ListController) CreateList(w http.ResponseWriter, r *http.Request) {
	var body service.CreateListInput
	if err := handler.DecodeBody(r, &body); err != nil {
		handler.WriteError(w, err)
		return
	}

	list, err := c.ListService.CreateList(r.Context(), handler.UserID(r), body)
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteOK(w, list, "list created")
}

// AddSubscribers adds the posted subscribers to the list in the URL.
func (c *ListController) AddSubscribers(w http.ResponseWriter, r *http.Request) {
	listID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		handler.WriteError(w, appErrors.NewValidation("id", "invalid list id"))
		return
	}
	var body struct {
		Subscribers []service.NewSubscriber `json:"subscribers"`
	}
	if err := handler.DecodeBody(r, &body); err != nil {
		handler.WriteError(w, err)
		return
	}

	result, err := c.ListService.AddSubscribers(r.Context(), handler.UserID(r), listID, body.Subscribers)
	if err != nil {
		handler.WriteError(w, err)
		return
	}
	handler.WriteOK(w, result, fmt.Sprintf("Added %d subscribers", result.Added))
}
