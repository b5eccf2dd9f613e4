package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"matheval-service/internal/domain"
)

// resultRow is the bun mapping for one persisted answer.
type resultRow struct {
	bun.BaseModel `bun:"table:result_rows"`

	ID            int64  `bun:"id,pk,autoincrement"`
	Timestamp     string `bun:"ts"`
	Name          string `bun:"name"`
	Roll          string `bun:"roll"`
	SchoolCode    string `bun:"school_code"`
	Domain        string `bun:"domain"`
	QuestionIndex int    `bun:"question_index"`
	Question      string `bun:"question"`
	Answer        string `bun:"answer"`
	CorrectAnswer string `bun:"correct_answer"`
	Status        string `bun:"status"`
}

// RowStore is the postgres-backed append-only result store.
type RowStore struct {
	db *bun.DB
}

func NewRowStore(db *bun.DB) *RowStore {
	return &RowStore{db: db}
}

// OpenDB builds a bun.DB over the pgdriver connector for the given DSN.
func OpenDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

func (s *RowStore) Append(ctx context.Context, rows []domain.ResultRow) error {
	if len(rows) == 0 {
		return nil
	}
	models := make([]resultRow, len(rows))
	for i, r := range rows {
		models[i] = resultRow{
			Timestamp:     r.Timestamp,
			Name:          r.Name,
			Roll:          r.Roll,
			SchoolCode:    r.SchoolCode,
			Domain:        r.Domain,
			QuestionIndex: r.QuestionIndex,
			Question:      r.Question,
			Answer:        r.Answer,
			CorrectAnswer: r.CorrectAnswer,
			Status:        r.Status,
		}
	}
	if _, err := s.db.NewInsert().Model(&models).Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}
	return nil
}

func (s *RowStore) ReadAll(ctx context.Context) ([]domain.ResultRow, error) {
	var models []resultRow
	if err := s.db.NewSelect().Model(&models).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("read result rows: %w", err)
	}
	rows := make([]domain.ResultRow, len(models))
	for i, m := range models {
		rows[i] = domain.ResultRow{
			Timestamp:     m.Timestamp,
			Name:          m.Name,
			Roll:          m.Roll,
			SchoolCode:    m.SchoolCode,
			Domain:        m.Domain,
			QuestionIndex: m.QuestionIndex,
			Question:      m.Question,
			Answer:        m.Answer,
			CorrectAnswer: m.CorrectAnswer,
			Status:        m.Status,
		}
	}
	return rows, nil
}
