package submission

import (
	"context"
	"fmt"
	"time"
)

// DefaultStaleMonths is how long an unsubmitted draft may sit untouched.
const DefaultStaleMonths = 6

// LastModifier reports when a page was last edited; *page.Page satisfies it.
type LastModifier interface {
	LastModified(ctx context.Context) (time.Time, error)
}

// Eligibility decides whether a draft qualifies for stale-draft cleanup.
type Eligibility struct {
	months int
	now    func() time.Time
}

// NewEligibility uses calendar-month arithmetic; months <= 0 means DefaultStaleMonths.
func NewEligibility(months int) *Eligibility {
	if months <= 0 {
		months = DefaultStaleMonths
	}
	return &Eligibility{months: months, now: time.Now}
}

// WithClock replaces the time source.
func (e *Eligibility) WithClock(now func() time.Time) *Eligibility {
	if now != nil {
		e.now = now
	}
	return e
}

// Threshold is the newest last-modified time that still counts as stale.
func (e *Eligibility) Threshold() time.Time {
	return e.now().AddDate(0, -e.months, 0)
}

// IsEligibleForStaleCleanup is false for anything currently submitted and
// otherwise true when the page was last edited before the threshold.
func (e *Eligibility) IsEligibleForStaleCleanup(ctx context.Context, sub *Submission, page LastModifier) (bool, error) {
	if sub == nil {
		return false, ErrNotLoaded
	}
	if sub.IsCurrentlySubmitted {
		return false, nil
	}

	modified, err := page.LastModified(ctx)
	if err != nil {
		return false, fmt.Errorf("last modified: %w", err)
	}
	return modified.Before(e.Threshold()), nil
}
