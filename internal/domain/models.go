package domain

// Domains is the fixed set of math topics questions are grouped under.
// Each domain has one JSON bank file named after it.
var Domains = []string{"algebra", "arithmetic", "graphs", "patterns"}

// Status values written to the result store.
const (
	StatusCorrect   = "Correct"
	StatusIncorrect = "Incorrect"
)

// Question is one multiple-choice item from a domain bank.
type Question struct {
	Domain  string   `json:"domain"`
	Text    string   `json:"question"`
	Options []string `json:"options,omitempty"`
	Answer  string   `json:"answer"`
}

// QuizSample maps a domain to the questions drawn for one quiz render.
// A fresh sample is drawn every time the quiz is shown.
type QuizSample map[string][]Question

// StudentIdentity is the registration captured at quiz start.
type StudentIdentity struct {
	Name       string `json:"name"`
	Roll       string `json:"roll"`
	SchoolCode string `json:"school_code"`
}

// TeacherIdentity is set after a successful teacher login.
type TeacherIdentity struct {
	SchoolCode string `json:"school_code"`
}

// SubmittedAnswer is one entry of the structured submission payload.
// Index addresses a question within the session sample for that domain.
type SubmittedAnswer struct {
	Domain string `json:"domain"`
	Index  int    `json:"index"`
	Answer string `json:"answer"`
}

// AnswerRecord is the scored outcome for a single question.
type AnswerRecord struct {
	Domain        string `json:"domain"`
	Question      string `json:"question"`
	YourAnswer    string `json:"your_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
}

// DomainScore counts outcomes within one domain.
type DomainScore struct {
	Total     int `json:"total"`
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
}

// QuizResult aggregates a full submission. Answers preserve submission order.
type QuizResult struct {
	Total     int                    `json:"total"`
	Correct   int                    `json:"correct"`
	Incorrect int                    `json:"incorrect"`
	Domains   map[string]DomainScore `json:"domains"`
	Answers   []AnswerRecord         `json:"answers"`
}

// ResultRow is one persisted answer in the append-only result store.
// Rows are never mutated or deleted.
type ResultRow struct {
	Timestamp     string `json:"timestamp"`
	Name          string `json:"name"`
	Roll          string `json:"roll"`
	SchoolCode    string `json:"school_code"`
	Domain        string `json:"domain"`
	QuestionIndex int    `json:"question_index"`
	Question      string `json:"question"`
	Answer        string `json:"answer"`
	CorrectAnswer string `json:"correct_answer"`
	Status        string `json:"status"`
}

// ReportRow is one group of the full teacher report, keyed by
// (name, roll, school code, domain).
type ReportRow struct {
	Name       string  `json:"name"`
	Roll       string  `json:"roll"`
	SchoolCode string  `json:"school_code"`
	Domain     string  `json:"domain"`
	Score      int     `json:"score"`
	Total      int     `json:"total"`
	Accuracy   float64 `json:"accuracy"`
}

// StudentAccuracy is one entry of the per-domain teacher view.
type StudentAccuracy struct {
	Student  string  `json:"student"`
	Accuracy float64 `json:"accuracy"`
}

// Session is the per-browser state held for the duration of a visit.
type Session struct {
	Student *StudentIdentity `json:"student,omitempty"`
	Teacher *TeacherIdentity `json:"teacher,omitempty"`
	Sample  QuizSample       `json:"sample,omitempty"`
	Result  *QuizResult      `json:"result,omitempty"`
}
