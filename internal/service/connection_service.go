package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	appErrors "github.com/unclebandit/acumbamail-sync/internal/errors"
	"github.com/unclebandit/acumbamail-sync/internal/repository"
)

type ConnectionStatus struct {
	Connected bool `json:"connected"`
	ListCount int  `json:"listCount"`
}

type ConnectionService struct {
	UserRepo  repository.UserRepositoryInterface
	NewClient ClientFactory
}

// TestConnection verifies a token against the remote and stores it when it works.
func (s *ConnectionService) TestConnection(ctx context.Context, userID int, authToken string) (*ConnectionStatus, error) {
	authToken = strings.TrimSpace(authToken)
	if authToken == "" {
		return nil, appErrors.NewValidation("authToken", "is required")
	}

	n, err := s.NewClient(authToken).TestConnection(ctx)
	if err != nil {
		return nil, fmt.Errorf("test connection: %w", err)
	}
	if err := s.UserRepo.UpdateAuthToken(ctx, userID, authToken); err != nil {
		return nil, err
	}

	log.Printf("🔑 [Connection] user %d: token verified, %d lists visible", userID, n)
	return &ConnectionStatus{Connected: true, ListCount: n}, nil
}

// CheckStoredConnection re-tests the token already saved for the user.
func (s *ConnectionService) CheckStoredConnection(ctx context.Context, userID int) (*ConnectionStatus, error) {
	user, err := configuredUser(ctx, s.UserRepo, userID)
	if err != nil {
		return nil, err
	}
	n, err := s.NewClient(user.AuthToken()).TestConnection(ctx)
	if err != nil {
		return nil, fmt.Errorf("test connection: %w", err)
	}
	return &ConnectionStatus{Connected: true, ListCount: n}, nil
}
