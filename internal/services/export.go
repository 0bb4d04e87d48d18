package services

import (
	"bytes"
	"encoding/csv"
	"strconv"
)

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 2, 64)
}

// ExportLongCSV renders one row per question answered in common by a pair.
// Incomparable rows leave the score cell empty.
func ExportLongCSV(pcs []PairComparison) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"user_a", "user_b", "question_id", "question", "answer_a", "answer_b", "score"})
	for _, pc := range pcs {
		for _, q := range pc.Questions {
			score := ""
			if q.Comparable {
				score = formatScore(q.Score)
			}
			rec := []string{
				string(pc.UserA.ID),
				string(pc.UserB.ID),
				string(q.Question.ID),
				q.Question.Text,
				string(q.AnswerA),
				string(q.AnswerB),
				score,
			}
			if err := w.Write(rec); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExportTotalsCSV renders one row per pair with its aggregate score. Pairs
// without a scored question in common leave the total empty.
func ExportTotalsCSV(pcs []PairComparison) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"user_a", "user_b", "common_questions", "total"})
	for _, pc := range pcs {
		total := ""
		if pc.Common && pc.Scored {
			total = formatScore(pc.Aggregate)
		}
		rec := []string{
			string(pc.UserA.ID),
			string(pc.UserB.ID),
			strconv.Itoa(len(pc.Questions)),
			total,
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
