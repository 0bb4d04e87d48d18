package api

import "github.com/soaringjerry/Align/internal/models"

// Store is the read/write surface shared by the in-memory and SQLite stores.
// Listings come back in insertion order.
type Store interface {
	AddUser(u *models.User)
	GetUser(id models.UserID) *models.User
	ListUsers() []*models.User

	AddQuestion(q *models.Question)
	GetQuestion(id models.QuestionID) *models.Question
	ListQuestions() []*models.Question

	AddAnswers(as []*models.AnsweredQuestion)
	ListAnswers() []*models.AnsweredQuestion
	FindAnswer(uid models.UserID, qid models.QuestionID) *models.AnsweredQuestion
}

var _ Store = (*memoryStore)(nil)
