package api

import (
	"github.com/soaringjerry/Align/internal/models"
	"github.com/soaringjerry/Align/internal/services"
)

type comparisonStoreAdapter struct {
	store Store
}

func newComparisonStoreAdapter(store Store) services.ComparisonStore {
	return &comparisonStoreAdapter{store: store}
}

func (a *comparisonStoreAdapter) ListUsers() ([]*models.User, error) {
	return a.store.ListUsers(), nil
}

func (a *comparisonStoreAdapter) ListQuestions() ([]*models.Question, error) {
	return a.store.ListQuestions(), nil
}

func (a *comparisonStoreAdapter) FindAnswer(uid models.UserID, qid models.QuestionID) (*models.AnsweredQuestion, error) {
	return a.store.FindAnswer(uid, qid), nil
}

var _ services.ComparisonStore = (*comparisonStoreAdapter)(nil)

// NewComparisonService wires a ComparisonService to store.
func NewComparisonService(store Store) *services.ComparisonService {
	return services.NewComparisonService(newComparisonStoreAdapter(store))
}
