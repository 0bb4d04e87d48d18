package services

import (
	"fmt"

	"github.com/soaringjerry/Align/internal/models"
)

type ComparisonStore interface {
	ListUsers() ([]*models.User, error)
	ListQuestions() ([]*models.Question, error)
	FindAnswer(uid models.UserID, qid models.QuestionID) (*models.AnsweredQuestion, error)
}

type ComparisonService struct {
	store   ComparisonStore
	observe func(PairComparison)
}

// Outcomes of a pair comparison.
const (
	OutcomeScored   = "scored"
	OutcomeNoCommon = "no_common"
	OutcomeUnscored = "unscored"
)

type QuestionComparison struct {
	Question   *models.Question `json:"question"`
	AnswerA    models.Answer    `json:"answer_a"`
	AnswerB    models.Answer    `json:"answer_b"`
	Score      float64          `json:"score"`
	Comparable bool             `json:"comparable"`
}

// PairComparison is the result for one user pair. When Common is false the
// two users share no answered question and Aggregate is meaningless.
type PairComparison struct {
	UserA     *models.User         `json:"user_a"`
	UserB     *models.User         `json:"user_b"`
	Common    bool                 `json:"common"`
	Aggregate float64              `json:"aggregate"`
	Scored    bool                 `json:"scored"`
	Questions []QuestionComparison `json:"questions"`
}

// Outcome classifies pc as scored, no_common or unscored.
func (pc PairComparison) Outcome() string {
	switch {
	case !pc.Common:
		return OutcomeNoCommon
	case !pc.Scored:
		return OutcomeUnscored
	default:
		return OutcomeScored
	}
}

func NewComparisonService(store ComparisonStore) *ComparisonService {
	return &ComparisonService{store: store}
}

// WithObserver registers fn to be called once for every pair compared.
func (s *ComparisonService) WithObserver(fn func(PairComparison)) *ComparisonService {
	s.observe = fn
	return s
}

// Compare scores every pair of known users.
func (s *ComparisonService) Compare() ([]PairComparison, error) {
	users, err := s.store.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	questions, err := s.store.ListQuestions()
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	out := make([]PairComparison, 0, PairCount(len(users)))
	for p := range Pairs(users) {
		pc, err := s.comparePair(p.A, p.B, questions)
		if err != nil {
			return nil, err
		}
		out = append(out, pc)
	}
	return out, nil
}

// ComparePair scores a single pair of users.
func (s *ComparisonService) ComparePair(a, b models.UserID) (*PairComparison, error) {
	if a == b {
		return nil, NewInvalidError("a user cannot be compared with itself")
	}
	users, err := s.store.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var ua, ub *models.User
	for _, u := range users {
		switch u.ID {
		case a:
			ua = u
		case b:
			ub = u
		}
	}
	if ua == nil || ub == nil {
		return nil, NewNotFoundError("user not found")
	}
	questions, err := s.store.ListQuestions()
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	pc, err := s.comparePair(ua, ub, questions)
	if err != nil {
		return nil, err
	}
	return &pc, nil
}

func (s *ComparisonService) comparePair(a, b *models.User, questions []*models.Question) (PairComparison, error) {
	pc := PairComparison{UserA: a, UserB: b, Questions: []QuestionComparison{}}
	triples := make([]Triple, 0, len(questions))
	for _, q := range questions {
		ansA, err := s.store.FindAnswer(a.ID, q.ID)
		if err != nil {
			return pc, fmt.Errorf("find answer %s/%s: %w", a.ID, q.ID, err)
		}
		if ansA == nil {
			continue
		}
		ansB, err := s.store.FindAnswer(b.ID, q.ID)
		if err != nil {
			return pc, fmt.Errorf("find answer %s/%s: %w", b.ID, q.ID, err)
		}
		if ansB == nil {
			continue
		}
		triples = append(triples, Triple{Question: q, A: ansA.Answer, B: ansB.Answer})
	}
	if len(triples) == 0 {
		s.notify(pc)
		return pc, nil
	}
	pc.Common = true
	for _, t := range triples {
		score := ScoreAnswers(t.A, t.B, t.Question)
		pc.Questions = append(pc.Questions, QuestionComparison{
			Question:   t.Question,
			AnswerA:    t.A,
			AnswerB:    t.B,
			Score:      score,
			Comparable: IsComparable(score),
		})
	}
	pc.Aggregate, pc.Scored = ScoreMany(triples)
	s.notify(pc)
	return pc, nil
}

func (s *ComparisonService) notify(pc PairComparison) {
	if s.observe != nil {
		s.observe(pc)
	}
}
