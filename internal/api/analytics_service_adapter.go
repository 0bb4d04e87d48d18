package api

import (
	"github.com/soaringjerry/Align/internal/models"
	"github.com/soaringjerry/Align/internal/services"
)

type analyticsStoreAdapter struct {
	store Store
}

func newAnalyticsStoreAdapter(store Store) services.AnalyticsStore {
	return &analyticsStoreAdapter{store: store}
}

func (a *analyticsStoreAdapter) ListQuestions() ([]*models.Question, error) {
	return a.store.ListQuestions(), nil
}

func (a *analyticsStoreAdapter) ListAnswers() ([]*models.AnsweredQuestion, error) {
	return a.store.ListAnswers(), nil
}

var _ services.AnalyticsStore = (*analyticsStoreAdapter)(nil)

// NewAnalyticsService wires an AnalyticsService to store.
func NewAnalyticsService(store Store) *services.AnalyticsService {
	return services.NewAnalyticsService(newAnalyticsStoreAdapter(store))
}
