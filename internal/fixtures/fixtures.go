// Package fixtures loads users, questions and recorded answers from YAML.
package fixtures

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/soaringjerry/Align/internal/models"
	"github.com/soaringjerry/Align/internal/services"
)

//go:embed sample.yaml
var sampleYAML []byte

type File struct {
	Scales    map[string][]string `yaml:"scales"`
	Questions []Question          `yaml:"questions"`
	Users     []models.User       `yaml:"users"`
	Answers   []Answer            `yaml:"answers"`
}

// Question names a scale or lists its answers inline, never both.
type Question struct {
	ID      string   `yaml:"id"`
	Text    string   `yaml:"text"`
	Scale   string   `yaml:"scale"`
	Answers []string `yaml:"answers"`
}

// Answer refers to a user by id or name and to a question by id or text.
type Answer struct {
	User       string    `yaml:"user"`
	Question   string    `yaml:"question"`
	Answer     string    `yaml:"answer"`
	AnsweredAt time.Time `yaml:"answered_at"`
}

// Dataset is a validated fixture file with every ID assigned.
type Dataset struct {
	Users     []*models.User
	Questions []*models.Question
	Answers   []*models.AnsweredQuestion
}

// Sink receives a Dataset. api.Store satisfies it.
type Sink interface {
	AddUser(u *models.User)
	AddQuestion(q *models.Question)
	AddAnswers(as []*models.AnsweredQuestion)
}

func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return &f, nil
}

func ReadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Parse(fh)
}

// Sample returns the bundled risk-alignment fixtures.
func Sample() *File {
	f, err := Parse(bytes.NewReader(sampleYAML))
	if err != nil {
		panic(fmt.Sprintf("bundled sample fixtures: %v", err))
	}
	return f
}

// Resolve validates f and assigns missing IDs with gen.
func (f *File) Resolve(gen services.IDGenerator, now time.Time) (*Dataset, error) {
	ds := &Dataset{}
	var errs []error

	// IDs win over names and texts when a reference matches both.
	usersByID := map[models.UserID]*models.User{}
	usersByName := map[string]*models.User{}
	for i, u := range f.Users {
		if strings.TrimSpace(u.Name) == "" {
			errs = append(errs, fmt.Errorf("users[%d]: name required", i))
			continue
		}
		if u.ID == "" {
			u.ID = gen.NewUserID()
		}
		if _, dup := usersByID[u.ID]; dup {
			errs = append(errs, fmt.Errorf("users[%d]: duplicate id %q", i, u.ID))
			continue
		}
		usersByID[u.ID] = &u
		if _, taken := usersByName[u.Name]; !taken {
			usersByName[u.Name] = &u
		}
		ds.Users = append(ds.Users, &u)
	}

	questionsByID := map[models.QuestionID]*models.Question{}
	questionsByText := map[string]*models.Question{}
	for i, fq := range f.Questions {
		q, err := f.resolveQuestion(fq, gen)
		if err != nil {
			errs = append(errs, fmt.Errorf("questions[%d]: %w", i, err))
			continue
		}
		if _, dup := questionsByID[q.ID]; dup {
			errs = append(errs, fmt.Errorf("questions[%d]: duplicate question %q", i, q.ID))
			continue
		}
		questionsByID[q.ID] = q
		if _, taken := questionsByText[q.Text]; !taken {
			questionsByText[q.Text] = q
		}
		ds.Questions = append(ds.Questions, q)
	}

	for i, fa := range f.Answers {
		u := usersByID[models.UserID(fa.User)]
		if u == nil {
			u = usersByName[fa.User]
		}
		if u == nil {
			errs = append(errs, fmt.Errorf("answers[%d]: unknown user %q", i, fa.User))
			continue
		}
		q := questionsByID[models.QuestionID(fa.Question)]
		if q == nil {
			q = questionsByText[strings.TrimSpace(fa.Question)]
		}
		if q == nil {
			errs = append(errs, fmt.Errorf("answers[%d]: unknown question %q", i, fa.Question))
			continue
		}
		a := models.Answer(fa.Answer)
		if q.IndexOf(a) < 0 {
			errs = append(errs, fmt.Errorf("answers[%d]: %q is not on the scale of %q", i, fa.Answer, q.Text))
			continue
		}
		at := fa.AnsweredAt
		if at.IsZero() {
			at = now
		}
		ds.Answers = append(ds.Answers, &models.AnsweredQuestion{
			ID:         gen.NewAnswerID(),
			UserID:     u.ID,
			QuestionID: q.ID,
			Answer:     a,
			AnsweredAt: at.UTC(),
		})
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return ds, nil
}

func (f *File) resolveQuestion(fq Question, gen services.IDGenerator) (*models.Question, error) {
	text := strings.TrimSpace(fq.Text)
	if text == "" {
		return nil, errors.New("text required")
	}
	raw := fq.Answers
	switch {
	case fq.Scale != "" && len(fq.Answers) > 0:
		return nil, errors.New("set either scale or answers, not both")
	case fq.Scale != "":
		sc, ok := f.Scales[fq.Scale]
		if !ok {
			return nil, fmt.Errorf("unknown scale %q", fq.Scale)
		}
		raw = sc
	}
	if len(raw) == 0 {
		return nil, errors.New("at least one answer required")
	}
	seen := map[string]bool{}
	answers := make([]models.Answer, 0, len(raw))
	for _, a := range raw {
		if strings.TrimSpace(a) == "" {
			return nil, errors.New("blank answer on scale")
		}
		if seen[a] {
			return nil, fmt.Errorf("duplicate answer %q on scale", a)
		}
		seen[a] = true
		answers = append(answers, models.Answer(a))
	}
	id := models.QuestionID(fq.ID)
	if id == "" {
		id = gen.QuestionID(text, answers)
	}
	return &models.Question{ID: id, Text: text, Answers: answers}, nil
}

// Apply writes ds into sink.
func (ds *Dataset) Apply(sink Sink) {
	for _, u := range ds.Users {
		sink.AddUser(u)
	}
	for _, q := range ds.Questions {
		sink.AddQuestion(q)
	}
	if len(ds.Answers) > 0 {
		sink.AddAnswers(ds.Answers)
	}
}
