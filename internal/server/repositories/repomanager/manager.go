package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/credauth/internal/dbx"
	"github.com/dmitrijs2005/credauth/internal/server/repositories/accounts"
)

// RepositoryManager vends repositories bound to a DBTX and owns the schema.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
}

// InMemoryRepositoryManager serves one process-wide memory store and ignores
// the DBTX it is handed.
type InMemoryRepositoryManager struct {
	accounts *accounts.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{accounts: accounts.NewMemoryRepository()}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Accounts(dbx.DBTX) accounts.Repository {
	return m.accounts
}
