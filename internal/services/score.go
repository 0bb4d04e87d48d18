package services

import "github.com/soaringjerry/Align/internal/models"

// Incomparable is returned by ScoreAnswers when an answer is not on the
// question's scale. It is never a valid percentage.
const Incomparable = -1.0

// IsComparable reports whether score is a real 0..100 percentage.
func IsComparable(score float64) bool {
	return score >= 0
}

// ScoreAnswers maps the ordinal distance between a and b on q's scale to a
// percentage: 100 for the same answer, 0 for opposite ends, linear between.
func ScoreAnswers(a, b models.Answer, q *models.Question) float64 {
	if q == nil {
		return Incomparable
	}
	ia, ib := q.IndexOf(a), q.IndexOf(b)
	if ia < 0 || ib < 0 {
		return Incomparable
	}
	if ia == ib {
		// covers the single-answer scale, where N-1 is zero
		return 100
	}
	n := len(q.Answers)
	d := ia - ib
	if d < 0 {
		d = -d
	}
	return float64(n-1-d) / float64(n-1) * 100
}

// Triple is one question answered by both members of a pair.
type Triple struct {
	Question *models.Question
	A        models.Answer
	B        models.Answer
}

// ScoreMany averages the per-question scores of triples. It is not a plain
// mean over every triple: incomparable triples are left out instead of
// pulling the mean down as -1. ok is false when nothing was scored.
func ScoreMany(triples []Triple) (mean float64, ok bool) {
	var total float64
	n := 0
	for _, t := range triples {
		s := ScoreAnswers(t.A, t.B, t.Question)
		if !IsComparable(s) {
			continue
		}
		total += s
		n++
	}
	if n == 0 {
		return 0, false
	}
	return total / float64(n), true
}

// ScoreClass buckets a score for display.
func ScoreClass(score float64) string {
	switch {
	case score == 100:
		return "score100"
	case score == 0:
		return "score0"
	case !IsComparable(score):
		return "scorena"
	default:
		return "scoremiddle"
	}
}
