package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/soaringjerry/Align/internal/api"
	"github.com/soaringjerry/Align/internal/models"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "align.db"), "", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestSQLiteStoreUsersAndQuestions(t *testing.T) {
	st := openTestStore(t)
	require.True(t, st.IsEmpty())

	st.AddUser(&models.User{ID: "u2", Name: "Bob"})
	st.AddUser(&models.User{ID: "u1", Name: "Ann", Description: "ops"})
	st.AddUser(&models.User{ID: "u2", Name: "Bobby"})

	users := st.ListUsers()
	require.Len(t, users, 2)
	require.Equal(t, models.UserID("u2"), users[0].ID, "insertion order survives upsert")
	require.Equal(t, "Bobby", users[0].Name)
	require.Equal(t, "ops", st.GetUser("u1").Description)
	require.Nil(t, st.GetUser("missing"))

	q := &models.Question{ID: "q1", Text: "how often?", Answers: []models.Answer{"never", "sometimes", "always"}}
	st.AddQuestion(q)
	got := st.GetQuestion("q1")
	require.NotNil(t, got)
	require.Equal(t, q.Answers, got.Answers)
	require.Len(t, st.ListQuestions(), 1)
	require.Nil(t, st.GetQuestion("nope"))
	require.False(t, st.IsEmpty())
}

func TestSQLiteStoreAnswers(t *testing.T) {
	st := openTestStore(t)
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	st.AddAnswers([]*models.AnsweredQuestion{
		{ID: "a1", UserID: "u1", QuestionID: "q1", Answer: "never", AnsweredAt: at},
		{ID: "a2", UserID: "u1", QuestionID: "q1", Answer: "always", AnsweredAt: at.Add(time.Hour)},
		{ID: "a3", UserID: "u2", QuestionID: "q1", Answer: "sometimes", AnsweredAt: at},
	})
	// duplicate id is ignored
	st.AddAnswers([]*models.AnsweredQuestion{{ID: "a1", UserID: "u9", QuestionID: "q9", Answer: "x", AnsweredAt: at}})

	require.Len(t, st.ListAnswers(), 3)
	first := st.FindAnswer("u1", "q1")
	require.NotNil(t, first)
	require.Equal(t, models.Answer("never"), first.Answer)
	require.True(t, first.AnsweredAt.Equal(at))
	require.Nil(t, st.FindAnswer("u3", "q1"))
}

func TestSQLiteStoreDrivesComparisons(t *testing.T) {
	st := openTestStore(t)
	st.AddQuestion(&models.Question{ID: "Q", Text: "Q", Answers: []models.Answer{"never", "sometimes", "always"}})
	for _, id := range []models.UserID{"u1", "u2", "u3"} {
		st.AddUser(&models.User{ID: id, Name: string(id)})
	}
	now := time.Now().UTC()
	st.AddAnswers([]*models.AnsweredQuestion{
		{ID: "a1", UserID: "u1", QuestionID: "Q", Answer: "never", AnsweredAt: now},
		{ID: "a2", UserID: "u2", QuestionID: "Q", Answer: "always", AnsweredAt: now},
		{ID: "a3", UserID: "u3", QuestionID: "Q", Answer: "sometimes", AnsweredAt: now},
	})
	pcs, err := api.NewComparisonService(st).Compare()
	require.NoError(t, err)
	require.Len(t, pcs, 3)
	require.Equal(t, 0.0, pcs[0].Aggregate)
	require.Equal(t, 50.0, pcs[1].Aggregate)
	require.Equal(t, 50.0, pcs[2].Aggregate)
}

func TestRunMigrationsFromDir(t *testing.T) {
	dir := t.TempDir()
	files, err := loadMigrations(dir)
	require.NoError(t, err)
	require.Empty(t, files, "an existing empty dir yields no migrations")

	files, err = loadMigrations(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	require.NotEmpty(t, files, "a missing dir falls back to embedded migrations")
	require.Equal(t, "001_init.sql", files[0].name)
}
