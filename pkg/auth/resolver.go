package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/georadical/layer-flow/pkg/logger"
)

// AccountResolver maps a provider identity onto a local user.
type AccountResolver struct {
	users  UserDirectory
	logger *slog.Logger
}

// NewAccountResolver creates a resolver backed by users. A nil logger discards output.
func NewAccountResolver(users UserDirectory, log *slog.Logger) *AccountResolver {
	if log == nil {
		log = logger.Discard()
	}
	return &AccountResolver{users: users, logger: log}
}

// Resolve returns the user for id, creating or backfilling it as needed.
//
// An unknown email creates a provider-only account. An account created by the
// same provider without a ProviderID gets it backfilled. Any other existing
// account is returned unchanged, so a local account signing in through a
// provider is authenticated but not linked.
func (r *AccountResolver) Resolve(ctx context.Context, id ProviderIdentity) (*User, error) {
	if id.Email == "" {
		return nil, ErrEmailUnavailable
	}

	user, err := r.users.FindByEmail(ctx, id.Email)
	switch {
	case errors.Is(err, ErrUserNotFound):
		user, err = r.create(ctx, id)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, ErrDuplicateEmail) {
			return nil, err
		}
		// A concurrent first login won the insert; continue with its record.
		user, err = r.users.FindByEmail(ctx, id.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to reload user after duplicate: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user.AuthProvider == id.Provider && user.ProviderID == "" {
		if err := r.users.UpdateProviderID(ctx, user.ID, id.Subject); err != nil {
			return nil, fmt.Errorf("failed to link provider: %w", err)
		}
		user.ProviderID = id.Subject
		r.logger.InfoContext(ctx, "provider id backfilled",
			logger.UserID(user.ID),
			logger.Provider(id.Provider),
		)
	}

	return user, nil
}

func (r *AccountResolver) create(ctx context.Context, id ProviderIdentity) (*User, error) {
	user, err := r.users.Create(ctx, NewUser{
		Email:        id.Email,
		AuthProvider: id.Provider,
		ProviderID:   id.Subject,
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.InfoContext(ctx, "user created from provider identity",
		logger.UserID(user.ID),
		logger.Provider(id.Provider),
	)
	return user, nil
}
