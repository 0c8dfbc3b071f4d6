package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/codex-shift-clean-arch/internal/core/concept"
	pgdb "github.com/ogurasousui/codex-shift-clean-arch/internal/platform/db/postgres"
)

const conceptColumns = `id, name, min_hours, max_hours, counts_as_workday`

// ConceptRepository は PostgreSQL 上の勤務区分マスタを参照します。
type ConceptRepository struct {
	pool pgdb.Queryer
}

// NewConceptRepository は ConceptRepository を生成します。
func NewConceptRepository(pool pgdb.Queryer) *ConceptRepository {
	return &ConceptRepository{pool: pool}
}

// FindByID は ID で勤務区分を取得します。
func (r *ConceptRepository) FindByID(ctx context.Context, id int) (*concept.WorkConcept, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+conceptColumns+`
          FROM work_concepts
         WHERE id = $1
    `, id)

	return scanConcept(row)
}

// List は条件に一致する勤務区分を ID 順に返します。
func (r *ConceptRepository) List(ctx context.Context, filter concept.ListFilter) ([]*concept.WorkConcept, error) {
	args := make([]any, 0, 2)
	conditions := make([]string, 0, 2)

	if filter.ID != nil {
		args = append(args, *filter.ID)
		conditions = append(conditions, "id = $"+strconv.Itoa(len(args)))
	}
	if filter.NameContains != nil {
		args = append(args, *filter.NameContains)
		conditions = append(conditions, "position($"+strconv.Itoa(len(args))+" in name) > 0")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := `
        SELECT ` + conceptColumns + `
          FROM work_concepts` + whereClause + `
         ORDER BY id
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	concepts := make([]*concept.WorkConcept, 0)
	for rows.Next() {
		c, err := scanConcept(rows)
		if err != nil {
			return nil, err
		}
		concepts = append(concepts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return concepts, nil
}

func scanConcept(row pgx.Row) (*concept.WorkConcept, error) {
	var (
		id       int
		name     string
		minHours sql.NullInt32
		maxHours sql.NullInt32
		workday  bool
	)

	if err := row.Scan(&id, &name, &minHours, &maxHours, &workday); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, concept.ErrConceptNotFound
		}
		return nil, err
	}

	return &concept.WorkConcept{
		ID:              id,
		Name:            name,
		MinHours:        nullableIntPtr(minHours),
		MaxHours:        nullableIntPtr(maxHours),
		CountsAsWorkday: workday,
	}, nil
}

func nullableIntPtr(v sql.NullInt32) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int32)
	return &n
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return int32(*v)
}
