package main

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/soaringjerry/Align/internal/services"
)

// writeReport prints each pair with its total and per-question scores.
func writeReport(w io.Writer, pcs []services.PairComparison) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, pc := range pcs {
		fmt.Fprintf(tw, "%s (%s) ----- %s (%s)\n", pc.UserA.Name, pc.UserA.Description, pc.UserB.Name, pc.UserB.Description)
		switch {
		case !pc.Common:
			fmt.Fprintln(tw, "  No questions answered in common")
			continue
		case pc.Scored:
			fmt.Fprintf(tw, "  total %d %%\n", int(math.Round(pc.Aggregate)))
		default:
			fmt.Fprintln(tw, "  total n/a")
		}
		for _, q := range pc.Questions {
			score := "n/a"
			if q.Comparable {
				score = fmt.Sprintf("%d%%", int(math.Round(q.Score)))
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s: %s\t%s: %s\n", score, q.Question.Text, pc.UserA.Name, q.AnswerA, pc.UserB.Name, q.AnswerB)
		}
	}
	return tw.Flush()
}
