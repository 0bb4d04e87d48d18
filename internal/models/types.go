package models

import "time"

// Answer is one choice on a question's scale. Answers are opaque and only
// compared for equality within the same question.
type Answer string

type QuestionID string

type UserID string

// User is a respondent. It carries identity only.
type User struct {
	ID          UserID `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// Question is an ordinal question: Answers runs from one end of the scale
// to the other (e.g. never..always) and the position is what gets scored.
type Question struct {
	ID      QuestionID `json:"id"`
	Text    string     `json:"question"`
	Answers []Answer   `json:"answers"`
}

// IndexOf returns the position of a on the question's scale, or -1.
func (q *Question) IndexOf(a Answer) int {
	for i, v := range q.Answers {
		if v == a {
			return i
		}
	}
	return -1
}

// AnsweredQuestion records the answer one user chose for one question.
type AnsweredQuestion struct {
	ID         string     `json:"id"`
	UserID     UserID     `json:"user_id"`
	QuestionID QuestionID `json:"question_id"`
	Answer     Answer     `json:"answer"`
	AnsweredAt time.Time  `json:"answered_at"`
}
