// Package accounts is the credential store: one record per account with its
// password hash and lockout state.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/credauth/internal/server/models"
)

// Repository persists accounts.
//
// UpdateLoginState is a compare-and-set: the update applies only if the
// stored lockout fields still equal expected, as one indivisible operation.
// A lost race yields common.ErrConcurrentUpdate; an unknown id yields
// common.ErrorNotFound. Create reports an existing email as
// common.ErrDuplicateKey.
type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)
	UpdateLoginState(ctx context.Context, id string, expected, next models.LoginState) (*models.Account, error)
}
