// Package smoke runs end-to-end checks against a live dictionary service.
//
// A Suite is an ordered list of Steps with optional Setup and Teardown.
// Steps within a suite run sequentially and a failed step does not stop
// the ones after it. Teardown always runs.
package smoke

import (
	"context"
	"time"

	"github.com/aelexs/dictsmoke/internal/domain"
)

// Step is one named check.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Suite groups steps that share fixtures.
type Suite struct {
	Name string
	// RequiresAuth makes the runner ensure a fresh session token before
	// the suite starts.
	RequiresAuth bool
	Setup        func(ctx context.Context) error
	Steps        []Step
	Teardown     func(ctx context.Context) error
}

// Case names used for fixture failures in results.
const (
	SetupCase    = "setup"
	TeardownCase = "teardown"
)

// CaseResult is the outcome of one step, or of a failed setup/teardown.
type CaseResult struct {
	Name     string
	Err      error
	Skipped  bool
	Duration time.Duration
}

// Passed reports whether the case ran and succeeded.
func (c CaseResult) Passed() bool {
	return c.Err == nil && !c.Skipped
}

// SuiteResult is the outcome of one suite.
type SuiteResult struct {
	Name     string
	Cases    []CaseResult
	Duration time.Duration
}

// Counts returns passed, failed and skipped case counts.
func (s SuiteResult) Counts() (passed, failed, skipped int) {
	for _, c := range s.Cases {
		switch {
		case c.Skipped:
			skipped++
		case c.Err != nil:
			failed++
		default:
			passed++
		}
	}
	return passed, failed, skipped
}

// RunResult is the outcome of a whole run.
type RunResult struct {
	RunID    domain.RunID
	Started  time.Time
	Duration time.Duration
	Suites   []SuiteResult
}

// Counts sums SuiteResult.Counts over all suites.
func (r RunResult) Counts() (passed, failed, skipped int) {
	for _, s := range r.Suites {
		p, f, sk := s.Counts()
		passed += p
		failed += f
		skipped += sk
	}
	return passed, failed, skipped
}

// OK reports whether no case failed.
func (r RunResult) OK() bool {
	_, failed, _ := r.Counts()
	return failed == 0
}
