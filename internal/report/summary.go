// Package report renders smoke run results: a JUnit XML file for CI, a
// console table, and a one-line summary published to SNS or the log.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aelexs/dictsmoke/internal/smoke"
)

// Publisher announces a finished run.
type Publisher interface {
	Publish(ctx context.Context, res smoke.RunResult) error
}

// maxListedFailures bounds how many failing cases the summary names.
const maxListedFailures = 10

// Summary returns a one-line description of res, naming failed cases.
func Summary(res smoke.RunResult) string {
	passed, failed, skipped := res.Counts()
	status := "PASS"
	if failed > 0 {
		status = "FAIL"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "dictsmoke %s run %s: %d passed, %d failed, %d skipped in %s",
		status, res.RunID.Short(), passed, failed, skipped, res.Duration.Round(time.Millisecond))

	names := failedCases(res)
	if len(names) == 0 {
		return b.String()
	}
	extra := 0
	if len(names) > maxListedFailures {
		extra = len(names) - maxListedFailures
		names = names[:maxListedFailures]
	}
	b.WriteString(" [")
	b.WriteString(strings.Join(names, ", "))
	if extra > 0 {
		fmt.Fprintf(&b, " and %d more", extra)
	}
	b.WriteString("]")
	return b.String()
}

func failedCases(res smoke.RunResult) []string {
	var names []string
	for _, s := range res.Suites {
		for _, c := range s.Cases {
			if c.Err != nil {
				names = append(names, s.Name+"/"+c.Name)
			}
		}
	}
	return names
}
