package app

import (
	"fmt"
	"strings"

	"matheval-service/internal/domain"
)

// Score grades a submission against the presented sample. Every answer must
// address a question that was actually shown, and each presented question may
// be answered at most once; the expected answer always comes from the
// server-held question, never from the client. Answers keep their submission
// order in the result.
func Score(sample domain.QuizSample, answers []domain.SubmittedAnswer) (domain.QuizResult, error) {
	result := domain.QuizResult{
		Domains: make(map[string]domain.DomainScore),
		Answers: make([]domain.AnswerRecord, 0, len(answers)),
	}

	type questionKey struct {
		domain string
		index  int
	}
	seen := make(map[questionKey]bool, len(answers))

	for _, a := range answers {
		questions, ok := sample[a.Domain]
		if !ok {
			return domain.QuizResult{}, fmt.Errorf("%w: unknown domain %q", domain.ErrValidation, a.Domain)
		}
		if a.Index < 0 || a.Index >= len(questions) {
			return domain.QuizResult{}, fmt.Errorf("%w: question index %d out of range for %q", domain.ErrValidation, a.Index, a.Domain)
		}
		key := questionKey{domain: a.Domain, index: a.Index}
		if seen[key] {
			return domain.QuizResult{}, fmt.Errorf("%w: duplicate answer for %s question %d", domain.ErrValidation, a.Domain, a.Index)
		}
		seen[key] = true
		question := questions[a.Index]

		record := domain.AnswerRecord{
			Domain:        a.Domain,
			Question:      question.Text,
			YourAnswer:    normalizeAnswer(a.Answer),
			CorrectAnswer: normalizeAnswer(question.Answer),
			IsCorrect:     answerMatches(a.Answer, question.Answer),
		}
		result.Answers = append(result.Answers, record)

		result.Total++
		score := result.Domains[a.Domain]
		score.Total++
		if record.IsCorrect {
			result.Correct++
			score.Correct++
		} else {
			result.Incorrect++
			score.Incorrect++
		}
		result.Domains[a.Domain] = score
	}

	return result, nil
}

// normalizeAnswer trims whitespace and lowercases an answer for comparison.
func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func answerMatches(submitted, expected string) bool {
	return normalizeAnswer(submitted) == normalizeAnswer(expected)
}
