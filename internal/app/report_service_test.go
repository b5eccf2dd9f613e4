package app_test

import (
	"context"
	"testing"

	"matheval-service/internal/app"
	"matheval-service/internal/domain"
	"matheval-service/internal/infra/memory"
)

func seedRows(t *testing.T) *memory.RowStore {
	t.Helper()
	rows := memory.NewRowStore()
	err := rows.Append(context.Background(), []domain.ResultRow{
		{Name: "Alice", Roll: "1", SchoolCode: "S1", Domain: "algebra", Status: domain.StatusCorrect},
		{Name: "Alice", Roll: "1", SchoolCode: "S1", Domain: "algebra", Status: domain.StatusCorrect},
		{Name: "Alice", Roll: "1", SchoolCode: "S1", Domain: "algebra", Status: domain.StatusIncorrect},
		{Name: "Alice", Roll: "1", SchoolCode: "S1", Domain: "arithmetic", Status: domain.StatusCorrect},
		{Name: "Bob", Roll: "2", SchoolCode: "S1", Domain: "graphs", Status: domain.StatusIncorrect},
		{Name: "Cara", Roll: "3", SchoolCode: "S2", Domain: "algebra", Status: domain.StatusCorrect},
	})
	if err != nil {
		t.Fatalf("seed rows: %v", err)
	}
	return rows
}

func TestPerStudentAccuracyFiltersAndGroups(t *testing.T) {
	reports := app.NewReportService(seedRows(t))

	// Domain match is case-insensitive.
	data, err := reports.PerStudentAccuracy(context.Background(), "Algebra", "S1")
	if err != nil {
		t.Fatalf("accuracy: %v", err)
	}
	if len(data) != 1 {
		t.Fatalf("expected one student, got %+v", data)
	}
	if data[0].Student != "Alice (1)" {
		t.Fatalf("expected grouped key 'Alice (1)', got %q", data[0].Student)
	}
	if data[0].Accuracy != 66.67 {
		t.Fatalf("expected 66.67, got %v", data[0].Accuracy)
	}
}

func TestPerStudentAccuracyEmptyWhenNoMatch(t *testing.T) {
	reports := app.NewReportService(seedRows(t))

	data, err := reports.PerStudentAccuracy(context.Background(), "graphs", "S3")
	if err != nil {
		t.Fatalf("accuracy: %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("expected empty result, got %+v", data)
	}
}

func TestFullReportGroupsAndIsolatesSchools(t *testing.T) {
	reports := app.NewReportService(seedRows(t))

	report, err := reports.FullReport(context.Background(), "S1")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(report) != 3 {
		t.Fatalf("expected 3 groups, got %+v", report)
	}

	// Sorted by name, roll, domain.
	want := []domain.ReportRow{
		{Name: "Alice", Roll: "1", SchoolCode: "S1", Domain: "algebra", Score: 2, Total: 3, Accuracy: 66.67},
		{Name: "Alice", Roll: "1", SchoolCode: "S1", Domain: "arithmetic", Score: 1, Total: 1, Accuracy: 100},
		{Name: "Bob", Roll: "2", SchoolCode: "S1", Domain: "graphs", Score: 0, Total: 1, Accuracy: 0},
	}
	for i, row := range report {
		if row != want[i] {
			t.Fatalf("row %d: expected %+v, got %+v", i, want[i], row)
		}
		if row.Accuracy < 0 || row.Accuracy > 100 {
			t.Fatalf("accuracy out of range: %+v", row)
		}
		if row.SchoolCode != "S1" {
			t.Fatalf("foreign school leaked into report: %+v", row)
		}
	}
}

func TestFullReportEmptyForUnknownSchool(t *testing.T) {
	reports := app.NewReportService(seedRows(t))

	report, err := reports.FullReport(context.Background(), "S9")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(report) != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
}
