// Package lockout implements the brute-force guard for logins as a pure
// transition function. It never touches storage: callers persist the
// returned state and act on the returned outcome.
package lockout

import (
	"time"

	"github.com/dmitrijs2005/credauth/internal/server/models"
)

const (
	DefaultThreshold = 3
	DefaultWindow    = 5 * time.Minute
)

// Phase is derived from an account's fields; it is never stored.
type Phase int

const (
	Clean Phase = iota
	Warming
	AtThreshold
	Locked
)

func (p Phase) String() string {
	switch p {
	case Clean:
		return "clean"
	case Warming:
		return "warming"
	case AtThreshold:
		return "at_threshold"
	case Locked:
		return "locked"
	default:
		return "unknown"
	}
}

// Action names the mutation a Decision asks the caller to persist.
type Action int

const (
	ActionNone Action = iota
	ActionReset
	ActionStartStreak
	ActionIncrement
	ActionLock
	ActionRestartStreak
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionReset:
		return "reset"
	case ActionStartStreak:
		return "start_streak"
	case ActionIncrement:
		return "increment"
	case ActionLock:
		return "lock"
	case ActionRestartStreak:
		return "restart_streak"
	default:
		return "unknown"
	}
}

// Outcome is what the login attempt resolves to.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeIncorrectCredentials
	OutcomeLocked
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeIncorrectCredentials:
		return "incorrect_credentials"
	case OutcomeLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// Decision is the result of one transition. Next equals the input state when
// Action is ActionNone.
type Decision struct {
	Action  Action
	Outcome Outcome
	Next    models.LoginState
}

// Policy holds the lockout parameters. The zero value is not usable; start
// from DefaultPolicy.
type Policy struct {
	// Threshold is the number of failures in one streak after which the next
	// failure inside Window locks the account.
	Threshold int
	// Window is measured from the first failure of the streak.
	Window time.Duration
}

func DefaultPolicy() Policy {
	return Policy{Threshold: DefaultThreshold, Window: DefaultWindow}
}

// Phase classifies s under p.
func (p Policy) Phase(s models.LoginState) Phase {
	switch {
	case s.Locked:
		return Locked
	case s.FailedAttempts <= 0:
		return Clean
	case s.FailedAttempts < p.Threshold:
		return Warming
	default:
		return AtThreshold
	}
}

// Decide computes the next state for an attempt whose password check
// produced credentialsMatch at instant now.
func (p Policy) Decide(s models.LoginState, credentialsMatch bool, now time.Time) Decision {
	if s.Locked {
		// frozen: a locked account never reveals whether the password matched
		return Decision{Action: ActionNone, Outcome: OutcomeLocked, Next: s}
	}

	if credentialsMatch {
		return Decision{Action: ActionReset, Outcome: OutcomeSuccess, Next: models.LoginState{}}
	}

	switch {
	case s.FailedAttempts <= 0:
		return Decision{Action: ActionStartStreak, Outcome: OutcomeIncorrectCredentials, Next: freshStreak(now)}

	case s.FailedAttempts < p.Threshold:
		return Decision{
			Action:  ActionIncrement,
			Outcome: OutcomeIncorrectCredentials,
			Next: models.LoginState{
				FailedAttempts: s.FailedAttempts + 1,
				WindowStart:    s.WindowStart,
			},
		}
	}

	if s.WindowStart != nil && elapsedMinutes(*s.WindowStart, now) < p.Window.Minutes() {
		next := s
		next.Locked = true
		return Decision{Action: ActionLock, Outcome: OutcomeLocked, Next: next}
	}

	return Decision{Action: ActionRestartStreak, Outcome: OutcomeIncorrectCredentials, Next: freshStreak(now)}
}

func freshStreak(now time.Time) models.LoginState {
	start := now
	return models.LoginState{FailedAttempts: 1, WindowStart: &start}
}

func elapsedMinutes(from, now time.Time) float64 {
	return now.Sub(from).Minutes()
}
