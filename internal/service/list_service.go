package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/unclebandit/acumbamail-sync/internal/acumbamail"
	appErrors "github.com/unclebandit/acumbamail-sync/internal/errors"
	"github.com/unclebandit/acumbamail-sync/internal/model"
	"github.com/unclebandit/acumbamail-sync/internal/repository"
)

type CreateListInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type NewSubscriber struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type AddSubscribersResult struct {
	Added  int                `json:"added"`
	Stored []model.Subscriber `json:"stored"`
}

// ListService creates lists and subscribers on Acumbamail and mirrors them locally.
type ListService struct {
	UserRepo       repository.UserRepositoryInterface
	ListRepo       repository.ListRepositoryInterface
	SubscriberRepo repository.SubscriberRepositoryInterface
	NewClient      ClientFactory
}

func (s *ListService) CreateList(ctx context.Context, userID int, in CreateListInput) (*model.AcumbamailList, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, appErrors.NewValidation("name", "is required")
	}
	user, err := configuredUser(ctx, s.UserRepo, userID)
	if err != nil {
		return nil, err
	}

	remoteID, err := s.NewClient(user.AuthToken()).CreateList(ctx, name, in.Description)
	if err != nil {
		return nil, fmt.Errorf("create remote list: %w", err)
	}

	list := &model.AcumbamailList{
		UserID:           userID,
		AcumbamailListID: remoteID.String(),
		Name:             name,
		Description:      in.Description,
	}
	if err := s.ListRepo.Create(ctx, list); err != nil {
		return nil, fmt.Errorf("store list %s: %w", remoteID, err)
	}
	log.Printf("📋 [Lists] user %d: created list %s (%s)", userID, remoteID, name)
	return list, nil
}

// AddSubscribers adds subscribers to a local list's remote counterpart. The
// remote assigns the ids, so the list is re-read and the new subscribers are
// stored from it. A failed re-read leaves them for the next sync.
func (s *ListService) AddSubscribers(ctx context.Context, userID, listID int, subs []NewSubscriber) (*AddSubscribersResult, error) {
	if len(subs) == 0 {
		return nil, appErrors.NewValidation("subscribers", "at least one subscriber is required")
	}
	wanted := make(map[string]bool, len(subs))
	remote := make([]acumbamail.RemoteSubscriber, 0, len(subs))
	for i, sub := range subs {
		email := strings.TrimSpace(sub.Email)
		if !strings.Contains(email, "@") {
			return nil, appErrors.NewValidation(fmt.Sprintf("subscribers[%d].email", i), "is not a valid email")
		}
		wanted[strings.ToLower(email)] = true
		remote = append(remote, acumbamail.RemoteSubscriber{
			Email:     email,
			FirstName: strings.TrimSpace(sub.FirstName),
			LastName:  strings.TrimSpace(sub.LastName),
		})
	}

	user, err := configuredUser(ctx, s.UserRepo, userID)
	if err != nil {
		return nil, err
	}
	list, err := s.ListRepo.GetByID(ctx, userID, listID)
	if err != nil {
		return nil, err
	}

	api := s.NewClient(user.AuthToken())
	if err := api.AddSubscribers(ctx, list.AcumbamailListID, remote); err != nil {
		return nil, fmt.Errorf("add subscribers to list %s: %w", list.AcumbamailListID, err)
	}
	result := &AddSubscribersResult{Added: len(remote), Stored: []model.Subscriber{}}

	current, err := api.GetSubscribers(ctx, list.AcumbamailListID)
	if err != nil {
		log.Printf("⚠️ [Lists] list %s: subscribers added but re-read failed: %v", list.AcumbamailListID, err)
		return result, nil
	}
	for _, rs := range current {
		if rs.ID == "" || !wanted[strings.ToLower(rs.Email)] {
			continue
		}
		sub, _, err := upsertSubscriber(ctx, s.SubscriberRepo, userID, list.ID, rs)
		if err != nil {
			log.Printf("⚠️ [Lists] subscriber %s: %v", rs.ID, err)
			continue
		}
		result.Stored = append(result.Stored, *sub)
	}

	log.Printf("📋 [Lists] list %s: added %d subscribers, stored %d", list.AcumbamailListID, result.Added, len(result.Stored))
	return result, nil
}
