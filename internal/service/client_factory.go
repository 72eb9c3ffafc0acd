package service

import (
	"context"
	"time"

	"github.com/unclebandit/acumbamail-sync/internal/acumbamail"
	appErrors "github.com/unclebandit/acumbamail-sync/internal/errors"
	"github.com/unclebandit/acumbamail-sync/internal/model"
	"github.com/unclebandit/acumbamail-sync/internal/repository"
)

// ClientFactory builds a remote API client for one user's auth token.
type ClientFactory func(authToken string) acumbamail.API

func NewClientFactory(baseURL string, timeout time.Duration) ClientFactory {
	return func(authToken string) acumbamail.API {
		return acumbamail.NewClient(authToken,
			acumbamail.WithBaseURL(baseURL),
			acumbamail.WithTimeout(timeout),
		)
	}
}

// configuredUser loads the user and rejects one without a stored token.
func configuredUser(ctx context.Context, users repository.UserRepositoryInterface, userID int) (*model.User, error) {
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.AuthToken() == "" {
		return nil, appErrors.ErrNotConfigured
	}
	return user, nil
}
