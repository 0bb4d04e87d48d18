package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/soaringjerry/Align/internal/api"
	"github.com/soaringjerry/Align/internal/models"
)

// SQLiteStore implements api.Store. Like the in-memory store it has no
// error returns; failures are logged and surface as missing rows.
type SQLiteStore struct {
	db  *sql.DB
	log *slog.Logger
}

func NewSQLiteStore(db *sql.DB, logger *slog.Logger) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	if logger == nil {
		logger = slog.Default()
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db, log: logger.With("component", "sqlite_store")}, nil
}

// Open opens (creating if needed) the database at path and migrates it.
func Open(path, migrationsDir string, logger *slog.Logger) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000", path)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := RunMigrations(sqlDB, migrationsDir); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	st, err := NewSQLiteStore(sqlDB, logger)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return st, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) logErr(op string, err error) {
	if err != nil {
		s.log.Error("sqlite store failure", "op", op, "err", err)
	}
}

func contextBg() context.Context { return context.Background() }

func (s *SQLiteStore) AddUser(u *models.User) {
	if u == nil {
		return
	}
	_, err := s.db.ExecContext(contextBg(),
		`INSERT INTO users (id, name, description) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, description = excluded.description`,
		string(u.ID), u.Name, u.Description)
	s.logErr("add user", err)
}

func (s *SQLiteStore) GetUser(id models.UserID) *models.User {
	var u models.User
	err := s.db.QueryRowContext(contextBg(),
		`SELECT id, name, description FROM users WHERE id = ?`, string(id)).
		Scan(&u.ID, &u.Name, &u.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logErr("get user", err)
		return nil
	}
	return &u
}

func (s *SQLiteStore) ListUsers() []*models.User {
	rows, err := s.db.QueryContext(contextBg(), `SELECT id, name, description FROM users ORDER BY seq`)
	if err != nil {
		s.logErr("list users", err)
		return []*models.User{}
	}
	defer rows.Close()
	out := []*models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Description); err != nil {
			s.logErr("scan user", err)
			continue
		}
		out = append(out, &u)
	}
	s.logErr("iterate users", rows.Err())
	return out
}

func encodeAnswers(as []models.Answer) (string, error) {
	if as == nil {
		as = []models.Answer{}
	}
	b, err := json.Marshal(as)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeAnswers(raw string) ([]models.Answer, error) {
	var out []models.Answer
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) AddQuestion(q *models.Question) {
	if q == nil {
		return
	}
	answers, err := encodeAnswers(q.Answers)
	if err != nil {
		s.logErr("encode answers", err)
		return
	}
	_, err = s.db.ExecContext(contextBg(),
		`INSERT INTO questions (id, text, answers) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET text = excluded.text, answers = excluded.answers`,
		string(q.ID), q.Text, answers)
	s.logErr("add question", err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(sc rowScanner) (*models.Question, error) {
	var (
		q   models.Question
		raw string
	)
	if err := sc.Scan(&q.ID, &q.Text, &raw); err != nil {
		return nil, err
	}
	answers, err := decodeAnswers(raw)
	if err != nil {
		return nil, err
	}
	q.Answers = answers
	return &q, nil
}

func (s *SQLiteStore) GetQuestion(id models.QuestionID) *models.Question {
	row := s.db.QueryRowContext(contextBg(), `SELECT id, text, answers FROM questions WHERE id = ?`, string(id))
	q, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logErr("get question", err)
		return nil
	}
	return q
}

func (s *SQLiteStore) ListQuestions() []*models.Question {
	rows, err := s.db.QueryContext(contextBg(), `SELECT id, text, answers FROM questions ORDER BY seq`)
	if err != nil {
		s.logErr("list questions", err)
		return []*models.Question{}
	}
	defer rows.Close()
	out := []*models.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			s.logErr("scan question", err)
			continue
		}
		out = append(out, q)
	}
	s.logErr("iterate questions", rows.Err())
	return out
}

// AddAnswers inserts all records in one transaction. Records whose ID is
// already stored are skipped.
func (s *SQLiteStore) AddAnswers(as []*models.AnsweredQuestion) {
	if len(as) == 0 {
		return
	}
	ctx := contextBg()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logErr("begin add answers", err)
		return
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO answered_questions (id, user_id, question_id, answer, answered_at)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		s.logErr("prepare add answers", err)
		_ = tx.Rollback()
		return
	}
	defer stmt.Close()
	for _, a := range as {
		if a == nil {
			continue
		}
		if _, err := stmt.ExecContext(ctx, a.ID, string(a.UserID), string(a.QuestionID), string(a.Answer),
			a.AnsweredAt.UTC().Format(time.RFC3339Nano)); err != nil {
			s.logErr("add answer", err)
			_ = tx.Rollback()
			return
		}
	}
	s.logErr("commit add answers", tx.Commit())
}

const answerColumns = `id, user_id, question_id, answer, answered_at`

func scanAnswer(sc rowScanner) (*models.AnsweredQuestion, error) {
	var (
		a  models.AnsweredQuestion
		at string
	)
	if err := sc.Scan(&a.ID, &a.UserID, &a.QuestionID, &a.Answer, &at); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, at)
	if err != nil {
		return nil, fmt.Errorf("parse answered_at: %w", err)
	}
	a.AnsweredAt = t
	return &a, nil
}

func (s *SQLiteStore) ListAnswers() []*models.AnsweredQuestion {
	rows, err := s.db.QueryContext(contextBg(), `SELECT `+answerColumns+` FROM answered_questions ORDER BY seq`)
	if err != nil {
		s.logErr("list answers", err)
		return []*models.AnsweredQuestion{}
	}
	defer rows.Close()
	out := []*models.AnsweredQuestion{}
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			s.logErr("scan answer", err)
			continue
		}
		out = append(out, a)
	}
	s.logErr("iterate answers", rows.Err())
	return out
}

// FindAnswer returns the earliest recorded answer of uid to qid.
func (s *SQLiteStore) FindAnswer(uid models.UserID, qid models.QuestionID) *models.AnsweredQuestion {
	row := s.db.QueryRowContext(contextBg(),
		`SELECT `+answerColumns+` FROM answered_questions
		 WHERE user_id = ? AND question_id = ? ORDER BY seq LIMIT 1`,
		string(uid), string(qid))
	a, err := scanAnswer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logErr("find answer", err)
		return nil
	}
	return a
}

// IsEmpty reports whether no users or questions are stored yet.
func (s *SQLiteStore) IsEmpty() bool {
	var n int
	err := s.db.QueryRowContext(contextBg(),
		`SELECT (SELECT COUNT(*) FROM users) + (SELECT COUNT(*) FROM questions)`).Scan(&n)
	if err != nil {
		s.logErr("count rows", err)
		return false
	}
	return n == 0
}

var _ api.Store = (*SQLiteStore)(nil)
