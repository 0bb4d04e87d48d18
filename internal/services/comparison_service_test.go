package services

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/soaringjerry/Align/internal/models"
)

type stubComparisonStore struct {
	users     []*models.User
	questions []*models.Question
	answers   []*models.AnsweredQuestion
	err       error
}

func (s *stubComparisonStore) ListUsers() ([]*models.User, error) { return s.users, s.err }

func (s *stubComparisonStore) ListQuestions() ([]*models.Question, error) { return s.questions, nil }

func (s *stubComparisonStore) FindAnswer(uid models.UserID, qid models.QuestionID) (*models.AnsweredQuestion, error) {
	for _, a := range s.answers {
		if a.UserID == uid && a.QuestionID == qid {
			return a, nil
		}
	}
	return nil, nil
}

func answered(uid models.UserID, qid models.QuestionID, a models.Answer) *models.AnsweredQuestion {
	return &models.AnsweredQuestion{UserID: uid, QuestionID: qid, Answer: a}
}

func newStubComparisonStore() *stubComparisonStore {
	q := &models.Question{ID: "Q", Text: "Q", Answers: []models.Answer{"never", "sometimes", "always"}}
	return &stubComparisonStore{
		users: []*models.User{
			{ID: "u1", Name: "User1"},
			{ID: "u2", Name: "User2"},
			{ID: "u3", Name: "User3"},
			{ID: "u4", Name: "User4"},
		},
		questions: []*models.Question{q},
		answers: []*models.AnsweredQuestion{
			answered("u1", "Q", "never"),
			answered("u2", "Q", "always"),
			answered("u3", "Q", "sometimes"),
		},
	}
}

type pairSummary struct {
	A, B      models.UserID
	Common    bool
	Aggregate float64
	Scores    []float64
}

func summarize(pcs []PairComparison) []pairSummary {
	out := make([]pairSummary, 0, len(pcs))
	for _, pc := range pcs {
		s := pairSummary{A: pc.UserA.ID, B: pc.UserB.ID, Common: pc.Common, Aggregate: pc.Aggregate}
		for _, q := range pc.Questions {
			s.Scores = append(s.Scores, q.Score)
		}
		out = append(out, s)
	}
	return out
}

func TestCompareEndToEnd(t *testing.T) {
	svc := NewComparisonService(newStubComparisonStore())
	got, err := svc.Compare()
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	want := []pairSummary{
		{A: "u1", B: "u2", Common: true, Aggregate: 0, Scores: []float64{0}},
		{A: "u1", B: "u3", Common: true, Aggregate: 50, Scores: []float64{50}},
		{A: "u1", B: "u4"},
		{A: "u2", B: "u3", Common: true, Aggregate: 50, Scores: []float64{50}},
		{A: "u2", B: "u4"},
		{A: "u3", B: "u4"},
	}
	if diff := cmp.Diff(want, summarize(got)); diff != "" {
		t.Fatalf("unexpected comparisons (-want +got):\n%s", diff)
	}
}

func TestComparePairOnlyCommonQuestions(t *testing.T) {
	st := newStubComparisonStore()
	q2 := &models.Question{ID: "Q2", Text: "Q2", Answers: []models.Answer{"quarter", "half", "one", "five", "ten"}}
	st.questions = append(st.questions, q2)
	st.answers = append(st.answers,
		answered("u1", "Q2", "quarter"),
		answered("u3", "Q2", "half"),
		answered("u2", "Q2", "five"),
	)
	svc := NewComparisonService(st)
	pc, err := svc.ComparePair("u1", "u3")
	if err != nil {
		t.Fatalf("ComparePair: %v", err)
	}
	if !pc.Common || !pc.Scored || len(pc.Questions) != 2 {
		t.Fatalf("unexpected pair: %+v", pc)
	}
	// 50 on Q, 75 on Q2
	if pc.Aggregate != 62.5 {
		t.Fatalf("aggregate=%v, want 62.5", pc.Aggregate)
	}
}

func TestComparePairIncomparableAnswer(t *testing.T) {
	st := newStubComparisonStore()
	st.answers = append(st.answers, answered("u4", "Q", "whenever"))
	pc, err := NewComparisonService(st).ComparePair("u1", "u4")
	if err != nil {
		t.Fatalf("ComparePair: %v", err)
	}
	if !pc.Common || pc.Scored {
		t.Fatalf("want common but unscored pair, got %+v", pc)
	}
	if q := pc.Questions[0]; q.Comparable || q.Score != Incomparable {
		t.Fatalf("want incomparable question, got %+v", q)
	}
}

func TestComparePairErrors(t *testing.T) {
	svc := NewComparisonService(newStubComparisonStore())
	_, err := svc.ComparePair("u1", "nobody")
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorNotFound {
		t.Fatalf("want not found, got %v", err)
	}
	_, err = svc.ComparePair("u1", "u1")
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorInvalid {
		t.Fatalf("want invalid, got %v", err)
	}
}

func TestCompareStoreError(t *testing.T) {
	st := newStubComparisonStore()
	st.err = errors.New("boom")
	if _, err := NewComparisonService(st).Compare(); err == nil || !errors.Is(err, st.err) {
		t.Fatalf("want wrapped store error, got %v", err)
	}
}

func TestCompareNoUsers(t *testing.T) {
	got, err := NewComparisonService(&stubComparisonStore{}).Compare()
	if err != nil || len(got) != 0 {
		t.Fatalf("want empty result, got %v %v", got, err)
	}
}

func TestCompareNotifiesObserverOncePerPair(t *testing.T) {
	counts := map[string]int{}
	svc := NewComparisonService(newStubComparisonStore()).WithObserver(func(pc PairComparison) {
		counts[pc.Outcome()]++
	})
	if _, err := svc.Compare(); err != nil {
		t.Fatalf("Compare: %v", err)
	}
	want := map[string]int{OutcomeScored: 3, OutcomeNoCommon: 3}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Fatalf("observed outcomes (-want +got):\n%s", diff)
	}
	if _, err := svc.ComparePair("u1", "u3"); err != nil {
		t.Fatalf("ComparePair: %v", err)
	}
	if counts[OutcomeScored] != 4 {
		t.Fatalf("ComparePair observed %d scored, want 4", counts[OutcomeScored])
	}
	// rejected requests compare nothing
	_, _ = svc.ComparePair("u1", "u1")
	if counts[OutcomeScored]+counts[OutcomeNoCommon] != 7 {
		t.Fatalf("unexpected observations: %v", counts)
	}
}
