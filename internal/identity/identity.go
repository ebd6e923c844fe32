// Package identity resolves who an uploaded report belongs to. Callers hand
// in an employee id, a mobile number, or both; the resolver answers with the
// canonical user id from the directory, registering new ids when enough
// information is present.
package identity

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/creditdesk/cibil-extract/internal/store"
)

var (
	// ErrUserNotFound means the given id or mobile number is unknown and
	// there was not enough information to register it.
	ErrUserNotFound = eris.New("identity: user not found in directory")
	// ErrMobileRequired means neither a resolvable user id nor a mobile
	// number was supplied.
	ErrMobileRequired = eris.New("identity: mobile number is required when user id is not provided")
)

// Resolver maps an employee id or mobile number to a canonical user id.
type Resolver interface {
	Resolve(ctx context.Context, userID, mobileNumber string) (string, error)
}

// StoreResolver resolves against the store's directory table.
type StoreResolver struct {
	store store.Store
}

func NewResolver(st store.Store) *StoreResolver {
	return &StoreResolver{store: st}
}

// Resolve returns the canonical user id. A known user id wins outright; an
// unknown id paired with a mobile number is registered on the fly; a bare
// mobile number must already be in the directory.
func (r *StoreResolver) Resolve(ctx context.Context, userID, mobileNumber string) (string, error) {
	if userID != "" {
		entry, err := r.store.GetUserByID(ctx, userID)
		if err != nil {
			return "", err
		}
		if entry == nil {
			if mobileNumber == "" {
				return "", ErrUserNotFound
			}
			if err := r.store.InsertUser(ctx, userID, mobileNumber); err != nil {
				return "", err
			}
			zap.L().Info("registered new directory user",
				zap.String("user_id", userID))
			return userID, nil
		}
		if mobileNumber != "" && entry.MobileNumber == "" {
			if err := r.store.UpdateUserMobile(ctx, userID, mobileNumber); err != nil {
				return "", err
			}
		}
		return userID, nil
	}

	if mobileNumber == "" {
		return "", ErrMobileRequired
	}

	entry, err := r.store.GetUserByMobile(ctx, mobileNumber)
	if err != nil {
		return "", err
	}
	if entry == nil {
		return "", ErrUserNotFound
	}
	return entry.UserID, nil
}
