package services

import (
	"fmt"
	"sort"

	"github.com/soaringjerry/Align/internal/models"
)

type AnalyticsStore interface {
	ListQuestions() ([]*models.Question, error)
	ListAnswers() ([]*models.AnsweredQuestion, error)
}

type AnalyticsService struct {
	store AnalyticsStore
}

// AnalyticsQuestion is the answer distribution of one question. Histogram is
// aligned with the question's scale; answers not on the scale count as OffScale.
type AnalyticsQuestion struct {
	ID        models.QuestionID `json:"id"`
	Question  string            `json:"question"`
	Scale     []models.Answer   `json:"scale"`
	Histogram []int             `json:"histogram"`
	Total     int               `json:"total"`
	OffScale  int               `json:"off_scale"`
}

type AnalyticsTimeseries struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type AnalyticsSummary struct {
	TotalAnswers int                   `json:"total_answers"`
	Respondents  int                   `json:"respondents"`
	Questions    []AnalyticsQuestion   `json:"questions"`
	Timeseries   []AnalyticsTimeseries `json:"timeseries"`
}

func NewAnalyticsService(store AnalyticsStore) *AnalyticsService {
	return &AnalyticsService{store: store}
}

// Summary counts, per question, the first answer of every user, the same
// answer the comparison uses.
func (s *AnalyticsService) Summary() (*AnalyticsSummary, error) {
	questions, err := s.store.ListQuestions()
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	answers, err := s.store.ListAnswers()
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	items, respondents := buildAnalyticsQuestions(questions, answers)
	return &AnalyticsSummary{
		TotalAnswers: len(answers),
		Respondents:  respondents,
		Questions:    items,
		Timeseries:   buildTimeseries(answers),
	}, nil
}

// Question returns the distribution of a single question.
func (s *AnalyticsService) Question(id models.QuestionID) (*AnalyticsQuestion, error) {
	sum, err := s.Summary()
	if err != nil {
		return nil, err
	}
	for i := range sum.Questions {
		if sum.Questions[i].ID == id {
			return &sum.Questions[i], nil
		}
	}
	return nil, NewNotFoundError("question not found")
}

type userQuestion struct {
	user     models.UserID
	question models.QuestionID
}

func buildAnalyticsQuestions(questions []*models.Question, answers []*models.AnsweredQuestion) ([]AnalyticsQuestion, int) {
	index := make(map[models.QuestionID]int, len(questions))
	out := make([]AnalyticsQuestion, 0, len(questions))
	for i, q := range questions {
		out = append(out, AnalyticsQuestion{
			ID:        q.ID,
			Question:  q.Text,
			Scale:     q.Answers,
			Histogram: make([]int, len(q.Answers)),
		})
		index[q.ID] = i
	}
	seen := map[userQuestion]bool{}
	users := map[models.UserID]bool{}
	for _, a := range answers {
		k := userQuestion{a.UserID, a.QuestionID}
		if seen[k] {
			continue
		}
		seen[k] = true
		idx, ok := index[a.QuestionID]
		if !ok {
			continue
		}
		users[a.UserID] = true
		item := &out[idx]
		item.Total++
		if pos := questions[idx].IndexOf(a.Answer); pos >= 0 {
			item.Histogram[pos]++
		} else {
			item.OffScale++
		}
	}
	return out, len(users)
}

func buildTimeseries(answers []*models.AnsweredQuestion) []AnalyticsTimeseries {
	counts := map[string]int{}
	for _, a := range answers {
		if a.AnsweredAt.IsZero() {
			continue
		}
		counts[a.AnsweredAt.UTC().Format("2006-01-02")]++
	}
	days := make([]string, 0, len(counts))
	for d := range counts {
		days = append(days, d)
	}
	sort.Strings(days)
	out := make([]AnalyticsTimeseries, 0, len(days))
	for _, d := range days {
		out = append(out, AnalyticsTimeseries{Date: d, Count: counts[d]})
	}
	return out
}
