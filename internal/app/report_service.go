package app

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"matheval-service/internal/domain"
)

// ReportService computes teacher-facing aggregates over the result store.
// Every call scans the full row set fresh; nothing is cached.
type ReportService struct {
	rows RowStore
}

func NewReportService(rows RowStore) *ReportService {
	return &ReportService{rows: rows}
}

// PerStudentAccuracy groups a school's rows for one domain by student and
// returns each student's accuracy. Domain matching is case-insensitive.
// Groups with no rows never appear.
func (s *ReportService) PerStudentAccuracy(ctx context.Context, domainName, schoolCode string) ([]domain.StudentAccuracy, error) {
	rows, err := s.rows.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	type counts struct {
		correct int
		total   int
	}
	scores := make(map[string]counts)
	for _, r := range rows {
		if r.SchoolCode != schoolCode || !strings.EqualFold(r.Domain, domainName) {
			continue
		}
		key := fmt.Sprintf("%s (%s)", r.Name, r.Roll)
		c := scores[key]
		c.total++
		if r.Status == domain.StatusCorrect {
			c.correct++
		}
		scores[key] = c
	}

	students := make([]string, 0, len(scores))
	for student := range scores {
		students = append(students, student)
	}
	sort.Strings(students)

	out := make([]domain.StudentAccuracy, 0, len(students))
	for _, student := range students {
		c := scores[student]
		if c.total == 0 {
			continue
		}
		out = append(out, domain.StudentAccuracy{
			Student:  student,
			Accuracy: roundAccuracy(c.correct, c.total),
		})
	}
	return out, nil
}

// FullReport groups a school's rows by (name, roll, school code, domain) and
// returns score, total and accuracy per group.
func (s *ReportService) FullReport(ctx context.Context, schoolCode string) ([]domain.ReportRow, error) {
	rows, err := s.rows.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	type groupKey struct {
		name   string
		roll   string
		school string
		domain string
	}
	type counts struct {
		correct int
		total   int
	}
	groups := make(map[groupKey]counts)
	for _, r := range rows {
		if r.SchoolCode != schoolCode {
			continue
		}
		key := groupKey{name: r.Name, roll: r.Roll, school: r.SchoolCode, domain: r.Domain}
		c := groups[key]
		c.total++
		if r.Status == domain.StatusCorrect {
			c.correct++
		}
		groups[key] = c
	}

	keys := make([]groupKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].name != keys[j].name {
			return keys[i].name < keys[j].name
		}
		if keys[i].roll != keys[j].roll {
			return keys[i].roll < keys[j].roll
		}
		return keys[i].domain < keys[j].domain
	})

	out := make([]domain.ReportRow, 0, len(keys))
	for _, key := range keys {
		c := groups[key]
		accuracy := 0.0
		if c.total > 0 {
			accuracy = roundAccuracy(c.correct, c.total)
		}
		out = append(out, domain.ReportRow{
			Name:       key.name,
			Roll:       key.roll,
			SchoolCode: key.school,
			Domain:     key.domain,
			Score:      c.correct,
			Total:      c.total,
			Accuracy:   accuracy,
		})
	}
	return out, nil
}

// roundAccuracy computes correct/total as a percentage rounded to 2 decimals.
func roundAccuracy(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*100*100) / 100
}
