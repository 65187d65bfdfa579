package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/credauth/internal/common"
	"github.com/dmitrijs2005/credauth/internal/dbx"
	"github.com/dmitrijs2005/credauth/internal/server/models"
	"github.com/google/uuid"
)

const accountColumns = `id, email, password_hash, first_name, last_name, failed_attempts, failed_window_start, locked, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {

	if account.ID == "" {
		account.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO accounts (id, email, password_hash, first_name, last_name)
         VALUES ($1, $2, $3, $4, $5)
		 RETURNING failed_attempts, locked, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		account.ID, account.Email, account.PasswordHash, account.FirstName, account.LastName).
		Scan(&account.FailedAttempts, &account.Locked, &account.CreatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrDuplicateKey
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	account.FailedAttemptWindowStart = nil
	return account, nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	query :=
		`SELECT ` + accountColumns + ` FROM accounts
		 WHERE email = $1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	query :=
		`SELECT ` + accountColumns + ` FROM accounts
		 WHERE id = $1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) UpdateLoginState(ctx context.Context, id string, expected, next models.LoginState) (*models.Account, error) {
	query :=
		`UPDATE accounts
		 SET failed_attempts = $2, failed_window_start = $3, locked = $4
		 WHERE id = $1
		   AND failed_attempts = $5
		   AND locked = $6
		   AND failed_window_start IS NOT DISTINCT FROM $7::timestamptz
		 RETURNING ` + accountColumns + `
		 `

	account, err := r.scanOne(r.db.QueryRowContext(ctx, query,
		id,
		next.FailedAttempts, nullTime(next.WindowStart), next.Locked,
		expected.FailedAttempts, expected.Locked, nullTime(expected.WindowStart),
	))

	if errors.Is(err, common.ErrorNotFound) {
		// nothing matched: either the row is gone or another attempt won
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if exists {
			return nil, common.ErrConcurrentUpdate
		}
		return nil, common.ErrorNotFound
	}

	return account, err
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}
	var windowStart sql.NullTime

	err := row.Scan(&account.ID, &account.Email, &account.PasswordHash, &account.FirstName, &account.LastName,
		&account.FailedAttempts, &windowStart, &account.Locked, &account.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if windowStart.Valid {
		t := windowStart.Time
		account.FailedAttemptWindowStart = &t
	}

	return account, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
