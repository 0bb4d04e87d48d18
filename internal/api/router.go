package api

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soaringjerry/Align/internal/metrics"
	"github.com/soaringjerry/Align/internal/middleware"
	"github.com/soaringjerry/Align/internal/models"
	"github.com/soaringjerry/Align/internal/services"
	"github.com/soaringjerry/Align/internal/utils"
)

type Router struct {
	store       Store
	comparisons *services.ComparisonService
	analytics   *services.AnalyticsService
	log         *slog.Logger
}

func NewRouter(store Store, m *metrics.Metrics, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		store:       store,
		comparisons: NewComparisonService(store).WithObserver(m.ObservePair),
		analytics:   NewAnalyticsService(store),
		log:         logger,
	}
}

func (rt *Router) Register(r chi.Router) {
	r.Get("/api/users", rt.handleUsers)
	r.Get("/api/questions", rt.handleQuestions)
	r.Get("/api/questions/{id}/summary", rt.handleQuestionSummary)
	r.Get("/api/answers", rt.handleAnswers)
	r.Get("/api/analytics", rt.handleAnalytics)
	r.Get("/api/export", rt.handleExport)
	r.Get("/api/comparisons", rt.handleComparisons)
	r.Get("/api/comparisons/{a}/{b}", rt.handleComparePair)
	r.Get("/comparisons", rt.handleComparisonsPage)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (rt *Router) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"
	if se, ok := services.AsServiceError(err); ok {
		msg = se.Message
		switch se.Code {
		case services.ErrorInvalid:
			status = http.StatusBadRequest
		case services.ErrorNotFound:
			status = http.StatusNotFound
		case services.ErrorConflict:
			status = http.StatusConflict
		}
	} else {
		rt.log.Error("request failed", "err", err)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// GET /api/users
func (rt *Router) handleUsers(w http.ResponseWriter, r *http.Request) {
	users := rt.store.ListUsers()
	writeJSON(w, http.StatusOK, map[string]any{"count": len(users), "users": users})
}

// GET /api/questions
func (rt *Router) handleQuestions(w http.ResponseWriter, r *http.Request) {
	qs := rt.store.ListQuestions()
	writeJSON(w, http.StatusOK, map[string]any{"count": len(qs), "questions": qs})
}

// GET /api/answers
func (rt *Router) handleAnswers(w http.ResponseWriter, r *http.Request) {
	as := rt.store.ListAnswers()
	writeJSON(w, http.StatusOK, map[string]any{"count": len(as), "answers": as})
}

// GET /api/analytics
func (rt *Router) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	sum, err := rt.analytics.Summary()
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// GET /api/questions/{id}/summary
func (rt *Router) handleQuestionSummary(w http.ResponseWriter, r *http.Request) {
	q, err := rt.analytics.Question(models.QuestionID(chi.URLParam(r, "id")))
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// GET /api/export?format=long|totals
func (rt *Router) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "long"
	}
	var export func([]services.PairComparison) ([]byte, error)
	switch format {
	case "long":
		export = services.ExportLongCSV
	case "totals":
		export = services.ExportTotalsCSV
	default:
		rt.writeError(w, services.NewInvalidError("format must be long or totals"))
		return
	}
	pcs, err := rt.comparisons.Compare()
	if err != nil {
		rt.writeError(w, err)
		return
	}
	b, err := export(pcs)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="comparisons_`+format+`.csv"`)
	_, _ = w.Write(b)
}

type questionView struct {
	QuestionID models.QuestionID `json:"question_id"`
	Question   string            `json:"question"`
	AnswerA    models.Answer     `json:"answer_a"`
	AnswerB    models.Answer     `json:"answer_b"`
	Score      *float64          `json:"score"`
	Percent    *int              `json:"percent"`
	Class      string            `json:"class"`
}

type pairView struct {
	UserA     *models.User   `json:"user_a"`
	UserB     *models.User   `json:"user_b"`
	Common    bool           `json:"common"`
	Message   string         `json:"message,omitempty"`
	Aggregate *float64       `json:"aggregate,omitempty"`
	Percent   *int           `json:"percent,omitempty"`
	Class     string         `json:"class,omitempty"`
	Questions []questionView `json:"questions"`
}

func roundPercent(score float64) *int {
	p := int(math.Round(score))
	return &p
}

// toPairView keeps the sentinel out of anything that looks like a percentage.
func toPairView(pc services.PairComparison, locale string) pairView {
	v := pairView{UserA: pc.UserA, UserB: pc.UserB, Common: pc.Common, Questions: []questionView{}}
	switch {
	case !pc.Common:
		v.Message = utils.T(locale, "comparisons.no_common")
	case !pc.Scored:
		v.Message = utils.T(locale, "comparisons.unscored")
		v.Class = services.ScoreClass(services.Incomparable)
	default:
		agg := pc.Aggregate
		v.Aggregate = &agg
		v.Percent = roundPercent(agg)
		v.Class = services.ScoreClass(agg)
	}
	for _, q := range pc.Questions {
		qv := questionView{
			QuestionID: q.Question.ID,
			Question:   q.Question.Text,
			AnswerA:    q.AnswerA,
			AnswerB:    q.AnswerB,
			Class:      services.ScoreClass(q.Score),
		}
		if q.Comparable {
			s := q.Score
			qv.Score = &s
			qv.Percent = roundPercent(s)
		}
		v.Questions = append(v.Questions, qv)
	}
	return v
}

// GET /api/comparisons
func (rt *Router) handleComparisons(w http.ResponseWriter, r *http.Request) {
	pcs, err := rt.comparisons.Compare()
	if err != nil {
		rt.writeError(w, err)
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	out := make([]pairView, 0, len(pcs))
	for _, pc := range pcs {
		out = append(out, toPairView(pc, locale))
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(out), "pairs": out})
}

// GET /api/comparisons/{a}/{b}
func (rt *Router) handleComparePair(w http.ResponseWriter, r *http.Request) {
	a := models.UserID(chi.URLParam(r, "a"))
	b := models.UserID(chi.URLParam(r, "b"))
	pc, err := rt.comparisons.ComparePair(a, b)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPairView(*pc, middleware.LocaleFromContext(r.Context())))
}

// GET /comparisons
func (rt *Router) handleComparisonsPage(w http.ResponseWriter, r *http.Request) {
	pcs, err := rt.comparisons.Compare()
	locale := middleware.LocaleFromContext(r.Context())
	if err != nil {
		rt.log.Error("compare failed", "err", err)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_ = pageTemplate.ExecuteTemplate(w, "error.html", map[string]any{"Title": utils.T(locale, "page.error"), "Locale": locale, "Error": err.Error()})
		return
	}
	pairs := make([]pairView, 0, len(pcs))
	for _, pc := range pcs {
		pairs = append(pairs, toPairView(pc, locale))
	}
	data := map[string]any{
		"Title":     utils.T(locale, "page.comparisons"),
		"Locale":    locale,
		"Users":     len(rt.store.ListUsers()),
		"Questions": len(rt.store.ListQuestions()),
		"Answers":   len(rt.store.ListAnswers()),
		"Pairs":     pairs,
		"NA":        utils.T(locale, "comparisons.na"),
		"Total":     utils.T(locale, "comparisons.total"),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.ExecuteTemplate(w, "comparisons.html", data); err != nil {
		rt.log.Error("render comparisons", "err", err)
	}
}
