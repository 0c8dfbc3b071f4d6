package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/codex-shift-clean-arch/internal/core/concept"
	"github.com/ogurasousui/codex-shift-clean-arch/internal/core/employee"
	"github.com/ogurasousui/codex-shift-clean-arch/internal/core/shift"
	pgdb "github.com/ogurasousui/codex-shift-clean-arch/internal/platform/db/postgres"
)

const shiftRecordsUniqueKey = "shift_records_employee_date_concept_key"

const shiftSelect = `
        SELECT s.id, s.employee_id, s.concept_id, s.work_date, s.worked_hours, s.created_at,
               e.id, e.document_number, e.email, e.first_name, e.last_name, e.birth_date, e.hire_date, e.created_at,
               c.id, c.name, c.min_hours, c.max_hours, c.counts_as_workday
          FROM shift_records s
          JOIN employees e ON e.id = s.employee_id
          JOIN work_concepts c ON c.id = s.concept_id`

const advisoryLockQuery = `SELECT pg_advisory_xact_lock(hashtext($1))`

// ShiftRepository は PostgreSQL を利用した勤務記録の永続化実装です。
type ShiftRepository struct {
	pool pgdb.Queryer
}

// NewShiftRepository は ShiftRepository を生成します。
func NewShiftRepository(pool pgdb.Queryer) *ShiftRepository {
	return &ShiftRepository{pool: pool}
}

// FindByEmployeeAndDateRange は従業員の勤務記録を日付範囲 (両端含む) で取得します。
func (r *ShiftRepository) FindByEmployeeAndDateRange(ctx context.Context, employeeID string, from, to time.Time) ([]*shift.Record, error) {
	return r.query(ctx, shiftSelect+`
         WHERE s.employee_id = $1 AND s.work_date BETWEEN $2 AND $3
         ORDER BY s.work_date, s.id
    `, employeeID, dateOnly(from), dateOnly(to))
}

// CountByDateAndConcept は同日・同区分の勤務記録数を返します。
func (r *ShiftRepository) CountByDateAndConcept(ctx context.Context, date time.Time, conceptID int) (int, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var count int
	if err := exec.QueryRow(ctx, `
        SELECT COUNT(*)
          FROM shift_records
         WHERE work_date = $1 AND concept_id = $2
    `, dateOnly(date), conceptID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByEmployeeDateConcept は従業員が同日に同区分を登録済みかを返します。
func (r *ShiftRepository) ExistsByEmployeeDateConcept(ctx context.Context, employeeID string, date time.Time, conceptID int) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var exists bool
	if err := exec.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM shift_records
             WHERE employee_id = $1 AND work_date = $2 AND concept_id = $3
        )
    `, employeeID, dateOnly(date), conceptID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// CountByEmployee は従業員に紐づく勤務記録数を返します。
func (r *ShiftRepository) CountByEmployee(ctx context.Context, employeeID string) (int, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var count int
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM shift_records WHERE employee_id = $1`, employeeID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Save は勤務記録を追加します。
func (r *ShiftRepository) Save(ctx context.Context, rec *shift.Record) (*shift.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var (
		id        string
		createdAt time.Time
	)
	if err := exec.QueryRow(ctx, `
        INSERT INTO shift_records (id, employee_id, concept_id, work_date, worked_hours, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at
    `,
		rec.ID,
		rec.EmployeeID,
		rec.ConceptID,
		dateOnly(rec.Date),
		nullableInt(rec.WorkedHours),
		rec.CreatedAt,
	).Scan(&id, &createdAt); err != nil {
		return nil, translateShiftPgError(err)
	}

	saved := *rec
	saved.ID = id
	saved.Date = dateOnly(rec.Date)
	saved.CreatedAt = createdAt
	return &saved, nil
}

// List は条件に一致する勤務記録を日付・ID 順に返します。
func (r *ShiftRepository) List(ctx context.Context, filter shift.ListFilter) ([]*shift.Record, error) {
	args := make([]any, 0, 3)
	conditions := make([]string, 0, 3)

	if filter.From != nil {
		args = append(args, dateOnly(*filter.From))
		conditions = append(conditions, "s.work_date >= $"+strconv.Itoa(len(args)))
	}
	if filter.To != nil {
		args = append(args, dateOnly(*filter.To))
		conditions = append(conditions, "s.work_date <= $"+strconv.Itoa(len(args)))
	}
	if filter.DocumentNumber != nil {
		args = append(args, *filter.DocumentNumber)
		conditions = append(conditions, "e.document_number = $"+strconv.Itoa(len(args)))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = `
         WHERE ` + strings.Join(conditions, " AND ")
	}

	return r.query(ctx, shiftSelect+whereClause+`
         ORDER BY s.work_date, s.id
    `, args...)
}

// LockForRegistration はトランザクション終了まで保持されるアドバイザリロックを取得します。
// デッドロックを避けるため、従業員ロックを先に、日付と区分のロックを後に取得します。
func (r *ShiftRepository) LockForRegistration(ctx context.Context, employeeID string, date time.Time, conceptID int) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	keys := []string{
		"employee:" + employeeID,
		fmt.Sprintf("shift:%s:%d", dateOnly(date).Format(time.DateOnly), conceptID),
	}
	for _, key := range keys {
		if _, err := exec.Exec(ctx, advisoryLockQuery, key); err != nil {
			return fmt.Errorf("postgres: advisory lock %s: %w", key, err)
		}
	}
	return nil
}

func (r *ShiftRepository) query(ctx context.Context, query string, args ...any) ([]*shift.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*shift.Record, 0)
	for rows.Next() {
		rec, err := scanShiftRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func scanShiftRecord(row pgx.Row) (*shift.Record, error) {
	var (
		rec         shift.Record
		workedHours sql.NullInt32
		emp         employee.Employee
		wc          concept.WorkConcept
		minHours    sql.NullInt32
		maxHours    sql.NullInt32
	)

	if err := row.Scan(
		&rec.ID,
		&rec.EmployeeID,
		&rec.ConceptID,
		&rec.Date,
		&workedHours,
		&rec.CreatedAt,
		&emp.ID,
		&emp.DocumentNumber,
		&emp.Email,
		&emp.FirstName,
		&emp.LastName,
		&emp.BirthDate,
		&emp.HireDate,
		&emp.CreatedAt,
		&wc.ID,
		&wc.Name,
		&minHours,
		&maxHours,
		&wc.CountsAsWorkday,
	); err != nil {
		return nil, err
	}

	rec.Date = dateOnly(rec.Date)
	rec.WorkedHours = nullableIntPtr(workedHours)
	emp.BirthDate = dateOnly(emp.BirthDate)
	emp.HireDate = dateOnly(emp.HireDate)
	wc.MinHours = nullableIntPtr(minHours)
	wc.MaxHours = nullableIntPtr(maxHours)
	rec.Employee = &emp
	rec.Concept = &wc

	return &rec, nil
}

func translateShiftPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			if pgErr.ConstraintName == shiftRecordsUniqueKey {
				return shift.ErrDuplicateShift
			}
		case foreignKeyViolationCode:
			switch pgErr.ConstraintName {
			case "shift_records_employee_id_fkey":
				return shift.ErrEmployeeNotFound
			case "shift_records_concept_id_fkey":
				return concept.ErrConceptNotFound
			}
		}
	}
	return err
}
