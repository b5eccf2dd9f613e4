package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"matheval-service/internal/domain"
)

// SessionStore abstracts how per-visitor sessions are kept (in-memory, Redis).
type SessionStore interface {
	Get(ctx context.Context, id string) (domain.Session, error)
	Put(ctx context.Context, id string, session domain.Session) error
	Delete(ctx context.Context, id string) error
}

// SampleSource draws the question sets shown to a student.
type SampleSource interface {
	Load(ctx context.Context) (domain.QuizSample, error)
}

// RowStore is the append-only result sink and its read-all counterpart.
type RowStore interface {
	Append(ctx context.Context, rows []domain.ResultRow) error
	ReadAll(ctx context.Context) ([]domain.ResultRow, error)
}

// RegisterRequest carries the quiz-start form fields.
type RegisterRequest struct {
	Name       string `validate:"required"`
	Roll       string `validate:"required"`
	SchoolCode string `validate:"required"`
}

// TeacherLoginRequest carries the teacher login form fields.
type TeacherLoginRequest struct {
	Email      string `validate:"required"`
	Password   string `validate:"required"`
	SchoolCode string `validate:"required"`
}

// QuizService contains the student and teacher session use cases.
type QuizService struct {
	sessions SessionStore
	bank     SampleSource
	rows     RowStore
	validate *validator.Validate
	now      func() time.Time

	teacherEmail    string
	teacherPassword string
}

func NewQuizService(sessions SessionStore, bank SampleSource, rows RowStore, teacherEmail, teacherPassword string) *QuizService {
	return &QuizService{
		sessions:        sessions,
		bank:            bank,
		rows:            rows,
		validate:        validator.New(),
		now:             time.Now,
		teacherEmail:    teacherEmail,
		teacherPassword: teacherPassword,
	}
}

// Register stores the student identity in the session. All fields are required.
func (s *QuizService) Register(ctx context.Context, sessionID string, req RegisterRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	session := s.session(ctx, sessionID)
	session.Student = &domain.StudentIdentity{
		Name:       req.Name,
		Roll:       req.Roll,
		SchoolCode: req.SchoolCode,
	}
	return s.sessions.Put(ctx, sessionID, session)
}

// Questions draws a fresh sample for a registered student and remembers it in
// the session as the authority for the following submission.
func (s *QuizService) Questions(ctx context.Context, sessionID string) (domain.StudentIdentity, domain.QuizSample, error) {
	session, err := s.studentSession(ctx, sessionID)
	if err != nil {
		return domain.StudentIdentity{}, nil, err
	}

	sample, err := s.bank.Load(ctx)
	if err != nil {
		return domain.StudentIdentity{}, nil, err
	}

	session.Sample = sample
	if err := s.sessions.Put(ctx, sessionID, session); err != nil {
		return domain.StudentIdentity{}, nil, err
	}
	return *session.Student, sample, nil
}

// LastSample returns the question set most recently presented to this session.
func (s *QuizService) LastSample(ctx context.Context, sessionID string) (domain.QuizSample, error) {
	session, err := s.studentSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Sample == nil {
		return nil, domain.ErrNoSample
	}
	return session.Sample, nil
}

// Submit scores the answers against the session-held sample, appends one row
// per answer to the result store, and keeps the result in the session.
// A failed append propagates without retry.
func (s *QuizService) Submit(ctx context.Context, sessionID string, answers []domain.SubmittedAnswer) (domain.QuizResult, error) {
	session, err := s.studentSession(ctx, sessionID)
	if err != nil {
		return domain.QuizResult{}, err
	}
	if session.Sample == nil {
		return domain.QuizResult{}, domain.ErrNoSample
	}

	result, err := Score(session.Sample, answers)
	if err != nil {
		return domain.QuizResult{}, err
	}

	if err := s.rows.Append(ctx, s.buildRows(*session.Student, session.Sample, answers)); err != nil {
		return domain.QuizResult{}, err
	}

	session.Result = &result
	if err := s.sessions.Put(ctx, sessionID, session); err != nil {
		return domain.QuizResult{}, err
	}
	return result, nil
}

// Result returns the last submitted result for this session.
func (s *QuizService) Result(ctx context.Context, sessionID string) (domain.StudentIdentity, domain.QuizResult, error) {
	session, err := s.studentSession(ctx, sessionID)
	if err != nil {
		return domain.StudentIdentity{}, domain.QuizResult{}, err
	}
	if session.Result == nil {
		return domain.StudentIdentity{}, domain.QuizResult{}, domain.ErrNoResult
	}
	return *session.Student, *session.Result, nil
}

// TeacherLogin checks the fixed credential pair and stores the teacher's
// school code in the session.
func (s *QuizService) TeacherLogin(ctx context.Context, sessionID string, req TeacherLoginRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if req.Email != s.teacherEmail || req.Password != s.teacherPassword {
		return domain.ErrInvalidCredentials
	}

	session := s.session(ctx, sessionID)
	session.Teacher = &domain.TeacherIdentity{SchoolCode: req.SchoolCode}
	return s.sessions.Put(ctx, sessionID, session)
}

// TeacherSchool returns the school code of the logged-in teacher.
func (s *QuizService) TeacherSchool(ctx context.Context, sessionID string) (string, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return "", domain.ErrNoTeacherSession
		}
		return "", err
	}
	if session.Teacher == nil {
		return "", domain.ErrNoTeacherSession
	}
	return session.Teacher.SchoolCode, nil
}

// session fetches the existing session or starts an empty one.
func (s *QuizService) session(ctx context.Context, sessionID string) domain.Session {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.Session{}
	}
	return session
}

// studentSession fetches the session and requires a registered student.
func (s *QuizService) studentSession(ctx context.Context, sessionID string) (domain.Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.Session{}, domain.ErrNoStudentSession
		}
		return domain.Session{}, err
	}
	if session.Student == nil {
		return domain.Session{}, domain.ErrNoStudentSession
	}
	return session, nil
}

// buildRows converts a submission into persisted rows. Status is derived with
// the same normalization the scorer uses, so store and result always agree.
func (s *QuizService) buildRows(student domain.StudentIdentity, sample domain.QuizSample, answers []domain.SubmittedAnswer) []domain.ResultRow {
	ts := s.now().Format("2006-01-02 15:04:05")
	rows := make([]domain.ResultRow, 0, len(answers))
	for _, a := range answers {
		question := sample[a.Domain][a.Index]
		status := domain.StatusIncorrect
		if answerMatches(a.Answer, question.Answer) {
			status = domain.StatusCorrect
		}
		rows = append(rows, domain.ResultRow{
			Timestamp:     ts,
			Name:          student.Name,
			Roll:          student.Roll,
			SchoolCode:    student.SchoolCode,
			Domain:        a.Domain,
			QuestionIndex: a.Index,
			Question:      question.Text,
			Answer:        a.Answer,
			CorrectAnswer: question.Answer,
			Status:        status,
		})
	}
	return rows
}
