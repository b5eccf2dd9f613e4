package bank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"matheval-service/internal/domain"
)

func TestLoadCapsSampleAtFive(t *testing.T) {
	dir := t.TempDir()
	writeBank(t, dir, "algebra", 8)

	loader := NewLoader(dir, []string{"algebra"}, time.Minute)
	sample, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := len(sample["algebra"]); got != SampleSize {
		t.Fatalf("expected %d questions, got %d", SampleSize, got)
	}
}

func TestLoadReturnsWholeBankWhenSmall(t *testing.T) {
	dir := t.TempDir()
	writeBank(t, dir, "arithmetic", 3)

	loader := NewLoader(dir, []string{"arithmetic"}, time.Minute)
	sample, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := len(sample["arithmetic"]); got != 3 {
		t.Fatalf("expected all 3 questions, got %d", got)
	}
}

func TestLoadSkipsMissingDomainFile(t *testing.T) {
	dir := t.TempDir()
	writeBank(t, dir, "algebra", 4)

	loader := NewLoader(dir, []string{"algebra", "graphs"}, time.Minute)
	sample, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := sample["graphs"]; ok {
		t.Fatalf("expected graphs to be omitted, got %v", sample["graphs"])
	}
	if len(sample["algebra"]) != 4 {
		t.Fatalf("expected 4 algebra questions, got %d", len(sample["algebra"]))
	}
}

func TestLoadFailsWhenBankDirMissing(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "nope"), []string{"algebra"}, time.Minute)
	_, err := loader.Load(context.Background())
	if !errors.Is(err, domain.ErrBankUnavailable) {
		t.Fatalf("expected ErrBankUnavailable, got %v", err)
	}
}

func TestLoadDrawsWithoutReplacement(t *testing.T) {
	dir := t.TempDir()
	bank := writeBank(t, dir, "patterns", 20)
	known := make(map[string]bool, len(bank))
	for _, q := range bank {
		known[q.Text] = true
	}

	loader := NewLoader(dir, []string{"patterns"}, time.Minute)
	sample, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	seen := make(map[string]bool)
	for _, q := range sample["patterns"] {
		if !known[q.Text] {
			t.Fatalf("sampled question %q is not in the bank", q.Text)
		}
		if seen[q.Text] {
			t.Fatalf("question %q drawn twice", q.Text)
		}
		seen[q.Text] = true
		if q.Domain != "patterns" {
			t.Fatalf("expected domain set on question, got %q", q.Domain)
		}
	}
}

func TestLoadResamplesAcrossCalls(t *testing.T) {
	dir := t.TempDir()
	writeBank(t, dir, "algebra", 20)

	loader := NewLoader(dir, []string{"algebra"}, time.Minute)
	firsts := make(map[string]bool)
	for i := 0; i < 6; i++ {
		sample, err := loader.Load(context.Background())
		if err != nil {
			t.Fatalf("load %d: %v", i, err)
		}
		firsts[sample["algebra"][0].Text] = true
	}
	if len(firsts) < 2 {
		t.Fatalf("expected varying samples across calls, always got %v", firsts)
	}
}

func TestLoadCachesBankReadsWithinTTL(t *testing.T) {
	dir := t.TempDir()
	original := writeBank(t, dir, "graphs", 4)
	known := make(map[string]bool, len(original))
	for _, q := range original {
		known[q.Text] = true
	}

	loader := NewLoader(dir, []string{"graphs"}, time.Minute)
	if _, err := loader.Load(context.Background()); err != nil {
		t.Fatalf("first load: %v", err)
	}

	// Replace the file; within the TTL the cached bank must still serve.
	writeNamedBank(t, dir, "graphs", 4, "replacement")

	sample, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	for _, q := range sample["graphs"] {
		if !known[q.Text] {
			t.Fatalf("expected cached bank, got fresh question %q", q.Text)
		}
	}
}

func writeBank(t *testing.T, dir, name string, n int) []domain.Question {
	t.Helper()
	return writeNamedBank(t, dir, name, n, name)
}

func writeNamedBank(t *testing.T, dir, name string, n int, prefix string) []domain.Question {
	t.Helper()
	questions := make([]domain.Question, n)
	for i := range questions {
		questions[i] = domain.Question{
			Text:    fmt.Sprintf("%s question %d", prefix, i),
			Options: []string{"a", "b"},
			Answer:  "a",
		}
	}
	data, err := json.Marshal(questions)
	if err != nil {
		t.Fatalf("marshal bank: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".json"), data, 0o644); err != nil {
		t.Fatalf("write bank: %v", err)
	}
	return questions
}
