package models

import "time"

// Account is a registered credential holder together with its lockout state.
type Account struct {
	ID                       string
	Email                    string
	PasswordHash             string
	FirstName                string
	LastName                 string
	FailedAttempts           int
	FailedAttemptWindowStart *time.Time
	Locked                   bool
	CreatedAt                time.Time
}

// LoginState is the part of an Account the lockout policy reads and writes.
type LoginState struct {
	FailedAttempts int
	WindowStart    *time.Time
	Locked         bool
}

// LoginState returns a copy of the account's lockout fields.
func (a *Account) LoginState() LoginState {
	return LoginState{
		FailedAttempts: a.FailedAttempts,
		WindowStart:    copyTime(a.FailedAttemptWindowStart),
		Locked:         a.Locked,
	}
}

// ApplyLoginState overwrites the account's lockout fields with s.
func (a *Account) ApplyLoginState(s LoginState) {
	a.FailedAttempts = s.FailedAttempts
	a.FailedAttemptWindowStart = copyTime(s.WindowStart)
	a.Locked = s.Locked
}

// Equal reports whether two states are identical, comparing instants rather
// than time.Time representations.
func (s LoginState) Equal(o LoginState) bool {
	if s.FailedAttempts != o.FailedAttempts || s.Locked != o.Locked {
		return false
	}
	if s.WindowStart == nil || o.WindowStart == nil {
		return s.WindowStart == nil && o.WindowStart == nil
	}
	return s.WindowStart.Equal(*o.WindowStart)
}

// PublicAccount is the projection of an Account that may leave the service.
type PublicAccount struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
}

func (a *Account) Public() PublicAccount {
	return PublicAccount{ID: a.ID, Email: a.Email, FirstName: a.FirstName, LastName: a.LastName}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
