package accounts

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/credauth/internal/common"
	"github.com/dmitrijs2005/credauth/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

var columns = []string{"id", "email", "password_hash", "first_name", "last_name", "failed_attempts", "failed_window_start", "locked", "created_at"}

const (
	qInsert      = `^INSERT INTO accounts \(id, email, password_hash, first_name, last_name\) VALUES \(\$1, \$2, \$3, \$4, \$5\) RETURNING failed_attempts, locked, created_at$`
	qByEmail     = `^SELECT id, email, .* FROM accounts WHERE email = \$1$`
	qByID        = `^SELECT id, email, .* FROM accounts WHERE id = \$1$`
	qUpdateState = `^UPDATE accounts SET failed_attempts = \$2, failed_window_start = \$3, locked = \$4 WHERE id = \$1 AND failed_attempts = \$5 AND locked = \$6 AND failed_window_start IS NOT DISTINCT FROM \$7::timestamptz RETURNING id, email, .*$`
	qExists      = `^SELECT EXISTS \(SELECT 1 FROM accounts WHERE id = \$1\)$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(qInsert).
		WithArgs("acc-1", "admin@example.com", "hash", "Ada", "Lovelace").
		WillReturnRows(sqlmock.NewRows([]string{"failed_attempts", "locked", "created_at"}).AddRow(0, false, created))

	got, err := repo.Create(context.Background(), &models.Account{
		ID: "acc-1", Email: "admin@example.com", PasswordHash: "hash", FirstName: "Ada", LastName: "Lovelace",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "acc-1" || got.FailedAttempts != 0 || got.Locked || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected account: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestCreate_AssignsID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qInsert).
		WithArgs(sqlmock.AnyArg(), "a@b.c", "hash", "", "").
		WillReturnRows(sqlmock.NewRows([]string{"failed_attempts", "locked", "created_at"}).AddRow(0, false, time.Now()))

	got, err := repo.Create(context.Background(), &models.Account{Email: "a@b.c", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID == "" {
		t.Fatal("expected generated id")
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qInsert).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "accounts_email_key"})

	_, err := repo.Create(context.Background(), &models.Account{ID: "x", Email: "a@b.c", PasswordHash: "h"})
	if !errors.Is(err, common.ErrDuplicateKey) {
		t.Fatalf("want common.ErrDuplicateKey, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qInsert).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Account{ID: "x", Email: "a@b.c", PasswordHash: "h"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestFindByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	start := time.Date(2026, 10, 14, 11, 58, 0, 0, time.UTC)
	mock.ExpectQuery(qByEmail).
		WithArgs("admin@example.com").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("acc-1", "admin@example.com", "hash", "", "", 2, start, false, time.Now()))

	got, err := repo.FindByEmail(context.Background(), "admin@example.com")
	if err != nil {
		t.Fatalf("FindByEmail error: %v", err)
	}
	if got.ID != "acc-1" || got.FailedAttempts != 2 || got.FailedAttemptWindowStart == nil || !got.FailedAttemptWindowStart.Equal(start) {
		t.Fatalf("unexpected account: %+v", got)
	}
}

func TestFindByEmail_NullWindow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qByEmail).
		WithArgs("admin@example.com").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("acc-1", "admin@example.com", "hash", "", "", 0, nil, false, time.Now()))

	got, err := repo.FindByEmail(context.Background(), "admin@example.com")
	if err != nil {
		t.Fatalf("FindByEmail error: %v", err)
	}
	if got.FailedAttemptWindowStart != nil {
		t.Fatalf("expected nil window start, got %v", got.FailedAttemptWindowStart)
	}
}

func TestFindByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qByEmail).WithArgs("ghost@example.com").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestFindByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qByID).WithArgs("acc-1").WillReturnError(errors.New("db err"))

	_, err := repo.FindByID(context.Background(), "acc-1")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestUpdateLoginState_Applied(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	start := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	expected := models.LoginState{FailedAttempts: 1, WindowStart: &start}
	next := models.LoginState{FailedAttempts: 2, WindowStart: &start}

	mock.ExpectQuery(qUpdateState).
		WithArgs("acc-1", 2, start, false, 1, false, start).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("acc-1", "a@b.c", "hash", "", "", 2, start, false, time.Now()))

	got, err := repo.UpdateLoginState(context.Background(), "acc-1", expected, next)
	if err != nil {
		t.Fatalf("UpdateLoginState error: %v", err)
	}
	if got.FailedAttempts != 2 {
		t.Fatalf("unexpected account: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestUpdateLoginState_ResetPassesNull(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	start := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(qUpdateState).
		WithArgs("acc-1", 0, nil, false, 2, false, start).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("acc-1", "a@b.c", "hash", "", "", 0, nil, false, time.Now()))

	got, err := repo.UpdateLoginState(context.Background(), "acc-1",
		models.LoginState{FailedAttempts: 2, WindowStart: &start}, models.LoginState{})
	if err != nil {
		t.Fatalf("UpdateLoginState error: %v", err)
	}
	if got.FailedAttempts != 0 || got.FailedAttemptWindowStart != nil {
		t.Fatalf("unexpected account: %+v", got)
	}
}

func TestUpdateLoginState_LostRace(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qUpdateState).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(qExists).WithArgs("acc-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	now := time.Now()
	_, err := repo.UpdateLoginState(context.Background(), "acc-1",
		models.LoginState{}, models.LoginState{FailedAttempts: 1, WindowStart: &now})
	if !errors.Is(err, common.ErrConcurrentUpdate) {
		t.Fatalf("want common.ErrConcurrentUpdate, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestUpdateLoginState_UnknownID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qUpdateState).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(qExists).WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := repo.UpdateLoginState(context.Background(), "ghost", models.LoginState{}, models.LoginState{})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}
