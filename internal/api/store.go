package api

import (
	"sync"

	"github.com/soaringjerry/Align/internal/models"
)

type memoryStore struct {
	mu        sync.RWMutex
	users     []*models.User
	userIdx   map[models.UserID]int
	questions []*models.Question
	qIdx      map[models.QuestionID]int
	answers   []*models.AnsweredQuestion
	// first answer per user/question
	firstAnswer map[answerKey]*models.AnsweredQuestion
}

type answerKey struct {
	uid models.UserID
	qid models.QuestionID
}

// NewMemoryStore returns an empty, process-local Store.
func NewMemoryStore() Store {
	return newMemoryStore()
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:       []*models.User{},
		userIdx:     map[models.UserID]int{},
		questions:   []*models.Question{},
		qIdx:        map[models.QuestionID]int{},
		answers:     []*models.AnsweredQuestion{},
		firstAnswer: map[answerKey]*models.AnsweredQuestion{},
	}
}

func (s *memoryStore) AddUser(u *models.User) {
	if u == nil {
		return
	}
	cp := *u
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.userIdx[cp.ID]; ok {
		s.users[i] = &cp
		return
	}
	s.userIdx[cp.ID] = len(s.users)
	s.users = append(s.users, &cp)
}

func (s *memoryStore) GetUser(id models.UserID) *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i, ok := s.userIdx[id]; ok {
		return s.users[i]
	}
	return nil
}

func (s *memoryStore) ListUsers() []*models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*models.User(nil), s.users...)
}

func (s *memoryStore) AddQuestion(q *models.Question) {
	if q == nil {
		return
	}
	cp := *q
	cp.Answers = append([]models.Answer(nil), q.Answers...)
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.qIdx[cp.ID]; ok {
		s.questions[i] = &cp
		return
	}
	s.qIdx[cp.ID] = len(s.questions)
	s.questions = append(s.questions, &cp)
}

func (s *memoryStore) GetQuestion(id models.QuestionID) *models.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i, ok := s.qIdx[id]; ok {
		return s.questions[i]
	}
	return nil
}

func (s *memoryStore) ListQuestions() []*models.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*models.Question(nil), s.questions...)
}

func (s *memoryStore) AddAnswers(as []*models.AnsweredQuestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range as {
		if a == nil {
			continue
		}
		cp := *a
		s.answers = append(s.answers, &cp)
		k := answerKey{uid: cp.UserID, qid: cp.QuestionID}
		if _, ok := s.firstAnswer[k]; !ok {
			s.firstAnswer[k] = &cp
		}
	}
}

func (s *memoryStore) ListAnswers() []*models.AnsweredQuestion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*models.AnsweredQuestion(nil), s.answers...)
}

func (s *memoryStore) FindAnswer(uid models.UserID, qid models.QuestionID) *models.AnsweredQuestion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.firstAnswer[answerKey{uid: uid, qid: qid}]
}
