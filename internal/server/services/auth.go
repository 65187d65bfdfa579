// Package services contains server-side business logic. This file implements
// AuthService, which registers accounts, authenticates logins against the
// lockout policy, and issues access tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/credauth/internal/common"
	"github.com/dmitrijs2005/credauth/internal/logging"
	"github.com/dmitrijs2005/credauth/internal/server/audit"
	"github.com/dmitrijs2005/credauth/internal/server/auth"
	"github.com/dmitrijs2005/credauth/internal/server/lockout"
	"github.com/dmitrijs2005/credauth/internal/server/models"
	"github.com/dmitrijs2005/credauth/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/credauth/internal/server/repositories/repomanager"
)

const (
	DefaultTokenTTL = time.Hour

	// maxStateRetries bounds how often a lost compare-and-set is re-decided
	// before the conflict is returned to the caller.
	maxStateRetries = 3

	dummyPassword = "credauth-dummy-password"
)

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token     string
	ID        string
	Email     string
	FirstName string
	LastName  string
}

// AuthService provides the account operations exposed over gRPC:
// - Register: create accounts
// - Login: verify credentials under the lockout policy and mint a token
// - Authenticate: resolve a token to its claims
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      auth.PasswordHasher
	issuer      auth.TokenIssuer
	log         logging.Logger

	policy   lockout.Policy
	tokenTTL time.Duration
	sink     audit.Sink
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// Option customizes an AuthService.
type Option func(*AuthService)

// WithClock sets the time source for lockout windows.
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) {
		if now != nil {
			s.now = now
		}
	}
}

func WithPolicy(p lockout.Policy) Option {
	return func(s *AuthService) { s.policy = p }
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *AuthService) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithAuditSink sets where lockout events go. Nil keeps the no-op sink.
func WithAuditSink(sink audit.Sink) Option {
	return func(s *AuthService) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// NewAuthService constructs an AuthService. db may be nil when m ignores it,
// as the in-memory manager does.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, hasher auth.PasswordHasher,
	issuer auth.TokenIssuer, logger logging.Logger, opts ...Option) *AuthService {

	s := &AuthService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		issuer:      issuer,
		log:         logger.With("module", "auth_service"),
		policy:      lockout.DefaultPolicy(),
		tokenTTL:    DefaultTokenTTL,
		sink:        audit.NopSink{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an unlocked account with no failed attempts. The
// confirmation is checked before the store is touched.
func (s *AuthService) Register(ctx context.Context, email, password, confirmation, firstName, lastName string) (*models.PublicAccount, error) {
	if password != confirmation {
		return nil, common.ErrPasswordMismatch
	}

	repo := s.accounts()

	_, err := repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, common.ErrEmailExists
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("error looking up account: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	account, err := repo.Create(ctx, &models.Account{
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateKey) {
			return nil, common.ErrEmailExists
		}
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	s.log.Info(ctx, "account registered", "account_id", account.ID)

	public := account.Public()
	return &public, nil
}

// Login authenticates email/password. Unknown emails and wrong passwords both
// yield ErrIncorrectCredentials; a locked account yields ErrAccountLocked
// without its password being checked.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	repo := s.accounts()

	account, err := repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.burnVerify(password)
			return nil, common.ErrIncorrectCredentials
		}
		return nil, fmt.Errorf("error looking up account: %w", err)
	}

	if account.Locked {
		s.log.Info(ctx, "login rejected", "account_id", account.ID, "outcome", lockout.OutcomeLocked.String())
		return nil, common.ErrAccountLocked
	}

	match, err := s.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("error verifying password: %w", err)
	}

	for attempt := 0; ; attempt++ {
		now := s.clock()
		expected := account.LoginState()
		d := s.policy.Decide(expected, match, now)

		if d.Action != lockout.ActionNone {
			updated, err := repo.UpdateLoginState(ctx, account.ID, expected, d.Next)
			if errors.Is(err, common.ErrConcurrentUpdate) && attempt < maxStateRetries {
				s.log.Debug(ctx, "login state changed concurrently, re-deciding", "account_id", account.ID, "attempt", attempt+1)
				account, err = repo.FindByID(ctx, account.ID)
				if err != nil {
					return nil, fmt.Errorf("error reloading account: %w", err)
				}
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("error updating login state: %w", err)
			}
			account = updated
		}

		if d.Action == lockout.ActionLock {
			s.recordLockout(ctx, account, now)
		}

		return s.resolve(ctx, account, d)
	}
}

// Authenticate resolves an access token (optionally "Bearer "-prefixed) to
// its claims.
func (s *AuthService) Authenticate(token string) (*auth.Claims, error) {
	claims := s.issuer.Decode(token)
	if claims == nil {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// --- helpers below ---

func (s *AuthService) accounts() accounts.Repository {
	return s.repomanager.Accounts(s.db)
}

// clock truncates to microseconds so values survive a Postgres round trip
// unchanged and compare-and-set matches on the next attempt.
func (s *AuthService) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *AuthService) resolve(ctx context.Context, account *models.Account, d lockout.Decision) (*LoginResult, error) {
	switch d.Outcome {
	case lockout.OutcomeSuccess:
		token, err := s.issuer.Sign(account.ID, account.Email, s.tokenTTL)
		if err != nil {
			return nil, fmt.Errorf("error signing token: %w", err)
		}
		s.log.Info(ctx, "login succeeded", "account_id", account.ID)
		return &LoginResult{
			Token:     token,
			ID:        account.ID,
			Email:     account.Email,
			FirstName: account.FirstName,
			LastName:  account.LastName,
		}, nil

	case lockout.OutcomeLocked:
		s.log.Info(ctx, "login rejected", "account_id", account.ID, "outcome", d.Outcome.String(), "action", d.Action.String())
		return nil, common.ErrAccountLocked

	default:
		s.log.Info(ctx, "login rejected", "account_id", account.ID, "outcome", d.Outcome.String(),
			"action", d.Action.String(), "failed_attempts", account.FailedAttempts)
		return nil, common.ErrIncorrectCredentials
	}
}

func (s *AuthService) recordLockout(ctx context.Context, account *models.Account, now time.Time) {
	s.log.Warn(ctx, "account locked", "account_id", account.ID, "failed_attempts", account.FailedAttempts)

	err := s.sink.Record(ctx, audit.Event{
		Type:           audit.EventAccountLocked,
		AccountID:      account.ID,
		FailedAttempts: account.FailedAttempts,
		WindowStart:    account.FailedAttemptWindowStart,
		OccurredAt:     now,
	})
	if err != nil {
		s.log.Warn(ctx, "failed to record lockout event", "account_id", account.ID, "error", err)
	}
}

// burnVerify runs one hash comparison for an unknown email so the response
// takes about as long as a real wrong-password check.
func (s *AuthService) burnVerify(password string) {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(dummyPassword)
		if err == nil {
			s.dummyHash = h
		}
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(password, s.dummyHash)
	}
}
