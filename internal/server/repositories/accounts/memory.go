package accounts

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/credauth/internal/common"
	"github.com/dmitrijs2005/credauth/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps accounts in process memory. All operations are
// serialized by one mutex, which makes UpdateLoginState atomic.
type MemoryRepository struct {
	mu      sync.Mutex
	byID    map[string]*models.Account
	byEmail map[string]string
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*models.Account),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func (r *MemoryRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[account.Email]; ok {
		return nil, common.ErrDuplicateKey
	}

	stored := *account
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.FailedAttempts = 0
	stored.FailedAttemptWindowStart = nil
	stored.Locked = false
	stored.CreatedAt = r.now().UTC()

	r.byID[stored.ID] = &stored
	r.byEmail[stored.Email] = stored.ID

	return clone(&stored), nil
}

func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(r.byID[id]), nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(account), nil
}

func (r *MemoryRepository) UpdateLoginState(ctx context.Context, id string, expected, next models.LoginState) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if !account.LoginState().Equal(expected) {
		return nil, common.ErrConcurrentUpdate
	}

	account.ApplyLoginState(next)
	return clone(account), nil
}

func clone(a *models.Account) *models.Account {
	c := *a
	c.ApplyLoginState(a.LoginState())
	return &c
}
