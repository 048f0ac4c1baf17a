// Package lockout implements the escalating lockout that guards repeated
// failed unlock attempts on an account.
//
// An account is OPEN or LOCKED. Failed attempts are counted while OPEN; on
// reaching the policy threshold the account is locked for the duration of its
// current escalation level and the level moves up one step, capped at the
// last duration. Attempts made while locked are refused without being
// counted. When a lock expires the failure count restarts but the level is
// kept, so a repeat offender is locked longer next time. Only a successful
// unlock resets the level.
package lockout

import (
	"errors"
	"fmt"
	"time"
)

const DefaultThreshold = 4

// DefaultDurations is the escalation ladder used when none is configured.
var DefaultDurations = []time.Duration{
	time.Minute,
	5 * time.Minute,
	15 * time.Minute,
	30 * time.Minute,
	time.Hour,
}

type Policy struct {
	Threshold int
	Durations []time.Duration
}

func DefaultPolicy() Policy {
	return Policy{Threshold: DefaultThreshold, Durations: DefaultDurations}
}

// Validate requires a positive threshold and a non-empty, non-decreasing
// list of positive durations.
func (p Policy) Validate() error {
	if p.Threshold < 1 {
		return fmt.Errorf("lockout threshold must be at least 1, got %d", p.Threshold)
	}
	if len(p.Durations) == 0 {
		return errors.New("lockout durations must not be empty")
	}
	for i, d := range p.Durations {
		if d <= 0 {
			return fmt.Errorf("lockout duration %d must be positive, got %s", i, d)
		}
		if i > 0 && d < p.Durations[i-1] {
			return fmt.Errorf("lockout durations must not decrease: %s after %s", d, p.Durations[i-1])
		}
	}
	return nil
}

// State is the lockout record of one username. The zero value is an OPEN
// account with no history.
type State struct {
	Failures    int        `json:"consecutiveFailures"`
	Level       int        `json:"escalationLevel"`
	LockedUntil *time.Time `json:"lockedUntil,omitempty"`
}

func (s State) Locked(now time.Time) bool {
	return s.LockedUntil != nil && now.Before(*s.LockedUntil)
}

// Remaining is the time left on an active lock, zero when OPEN.
func (s State) Remaining(now time.Time) time.Duration {
	if !s.Locked(now) {
		return 0
	}
	return s.LockedUntil.Sub(now)
}

// Refresh moves an expired lock back to OPEN. The failure count restarts and
// the escalation level is kept.
func (p Policy) Refresh(s State, now time.Time) State {
	if s.LockedUntil != nil && !now.Before(*s.LockedUntil) {
		s.LockedUntil = nil
		s.Failures = 0
	}
	return s
}

// Fail records a failed attempt and reports whether it triggered a lock. A
// failure while locked changes nothing.
func (p Policy) Fail(s State, now time.Time) (State, bool) {
	s = p.Refresh(s, now)
	if s.Locked(now) {
		return s, false
	}

	s.Failures++
	if s.Failures < p.Threshold {
		return s, false
	}

	level := min(s.Level, len(p.Durations)-1)
	until := now.Add(p.Durations[level])
	s.LockedUntil = &until
	s.Failures = 0
	s.Level = min(level+1, len(p.Durations)-1)
	return s, true
}

// AttemptsLeft is how many more failures an OPEN account tolerates before
// it is locked.
func (p Policy) AttemptsLeft(s State) int {
	return max(p.Threshold-s.Failures, 0)
}
