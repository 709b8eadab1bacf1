package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/aelexs/dictsmoke/internal/smoke"
)

// maxErrorWidth truncates error text in table cells.
const maxErrorWidth = 80

// WriteTable renders one row per case followed by a totals footer.
// color enables ANSI status colors for terminals.
func WriteTable(w io.Writer, res smoke.RunResult, color bool) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)

	paint := func(c text.Color, s string) string {
		if !color {
			return s
		}
		return c.Sprint(s)
	}

	t.AppendHeader(table.Row{"SUITE", "CASE", "RESULT", "TIME", "ERROR"})
	for _, s := range res.Suites {
		for _, c := range s.Cases {
			status, detail := paint(text.FgGreen, "PASS"), ""
			switch {
			case c.Skipped:
				status = paint(text.FgHiBlack, "SKIP")
			case c.Err != nil:
				status = paint(text.FgRed, "FAIL")
				detail = truncate(c.Err.Error(), maxErrorWidth)
			}
			t.AppendRow(table.Row{s.Name, c.Name, status, c.Duration.Round(time.Millisecond), detail})
		}
	}

	passed, failed, skipped := res.Counts()
	t.AppendFooter(table.Row{
		"TOTAL",
		fmt.Sprintf("%d cases", passed+failed+skipped),
		fmt.Sprintf("%d/%d/%d", passed, failed, skipped),
		res.Duration.Round(time.Millisecond),
		"pass/fail/skip",
	})
	t.Render()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
