package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"matheval-service/internal/app"
	"matheval-service/internal/domain"
)

const sessionCookie = "quiz_session"

// Handler exposes the quiz and teacher surfaces over HTTP.
type Handler struct {
	quiz       *app.QuizService
	reports    *app.ReportService
	corsOrigin string
}

func NewHandler(quiz *app.QuizService, reports *app.ReportService, corsOrigin string) *Handler {
	return &Handler{quiz: quiz, reports: reports, corsOrigin: corsOrigin}
}

// Routes builds the chi router with the full surface.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.corsOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Get("/", h.home)
	r.Post("/start-quiz", h.startQuiz)
	r.Get("/quiz", h.quizPage)
	r.Post("/quiz", h.quizPage)
	r.Get("/get-questions", h.getQuestions)
	r.Post("/submit-quiz", h.submitQuiz)
	r.Get("/result", h.result)

	r.Post("/teacher-login", h.teacherLogin)
	r.Get("/teacher-dashboard", h.teacherDashboard)
	r.Post("/get-domain-data", h.domainData)
	r.Get("/get-report-data", h.reportData)

	return r
}

// questionView is a Question without its answer; presented question sets
// must not leak the answer key to clients.
type questionView struct {
	Domain   string   `json:"domain"`
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
}

func sampleView(sample domain.QuizSample) map[string][]questionView {
	view := make(map[string][]questionView, len(sample))
	for name, questions := range sample {
		items := make([]questionView, len(questions))
		for i, q := range questions {
			items[i] = questionView{Domain: q.Domain, Question: q.Text, Options: q.Options}
		}
		view[name] = items
	}
	return view
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "matheval",
		"domains": domain.Domains,
	})
}

func (h *Handler) startQuiz(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	req := app.RegisterRequest{
		Name:       r.FormValue("name"),
		Roll:       r.FormValue("roll"),
		SchoolCode: r.FormValue("school_code"),
	}
	if err := h.quiz.Register(r.Context(), h.sessionID(w, r), req); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/quiz", http.StatusSeeOther)
}

// quizPage serves both GET and POST /quiz: a fresh sample per render.
func (h *Handler) quizPage(w http.ResponseWriter, r *http.Request) {
	student, sample, err := h.quiz.Questions(r.Context(), h.sessionID(w, r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"student":   student,
		"questions": sampleView(sample),
	})
}

func (h *Handler) getQuestions(w http.ResponseWriter, r *http.Request) {
	sample, err := h.quiz.LastSample(r.Context(), h.sessionID(w, r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sampleView(sample))
}

type submitRequest struct {
	Answers []domain.SubmittedAnswer `json:"answers"`
}

func (h *Handler) submitQuiz(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid submission payload", http.StatusBadRequest)
		return
	}
	if _, err := h.quiz.Submit(r.Context(), h.sessionID(w, r), req.Answers); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/result", http.StatusSeeOther)
}

func (h *Handler) result(w http.ResponseWriter, r *http.Request) {
	student, result, err := h.quiz.Result(r.Context(), h.sessionID(w, r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"student": student,
		"result":  result,
	})
}

func (h *Handler) teacherLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	req := app.TeacherLoginRequest{
		Email:      r.FormValue("email"),
		Password:   r.FormValue("password"),
		SchoolCode: r.FormValue("school_code"),
	}
	if err := h.quiz.TeacherLogin(r.Context(), h.sessionID(w, r), req); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/teacher-dashboard", http.StatusSeeOther)
}

func (h *Handler) teacherDashboard(w http.ResponseWriter, r *http.Request) {
	school, err := h.quiz.TeacherSchool(r.Context(), h.sessionID(w, r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"school_code": school,
		"domains":     domain.Domains,
	})
}

type domainDataRequest struct {
	Domain string `json:"domain"`
}

func (h *Handler) domainData(w http.ResponseWriter, r *http.Request) {
	school, err := h.quiz.TeacherSchool(r.Context(), h.sessionID(w, r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req domainDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	data, err := h.reports.PerStudentAccuracy(r.Context(), req.Domain, school)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (h *Handler) reportData(w http.ResponseWriter, r *http.Request) {
	school, err := h.quiz.TeacherSchool(r.Context(), h.sessionID(w, r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	report, err := h.reports.FullReport(r.Context(), school)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// sessionID returns the visitor's session id, minting a cookie on first use.
func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// fail maps domain errors onto the HTTP surface. Missing session state
// redirects back to an earlier step; sink failures surface as 502 without
// retry.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNoStudentSession),
		errors.Is(err, domain.ErrNoSample),
		errors.Is(err, domain.ErrNoResult),
		errors.Is(err, domain.ErrSessionNotFound):
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.Is(err, domain.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrInvalidCredentials):
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, domain.ErrNoTeacherSession):
		http.Error(w, "teacher login required", http.StatusUnauthorized)
	case errors.Is(err, domain.ErrBankUnavailable):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrWriteFailed):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		log.Printf("internal error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
