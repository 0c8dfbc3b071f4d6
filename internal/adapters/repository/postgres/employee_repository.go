package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/codex-shift-clean-arch/internal/core/employee"
	pgdb "github.com/ogurasousui/codex-shift-clean-arch/internal/platform/db/postgres"
)

const (
	uniqueViolationCode           = "23505"
	foreignKeyViolationCode       = "23503"
	invalidTextRepresentationCode = "22P02"

	employeesDocumentKey = "employees_document_number_key"
	employeesEmailKey    = "employees_email_key"
)

const employeeColumns = `id, document_number, email, first_name, last_name, birth_date, hire_date, created_at`

// EmployeeRepository は PostgreSQL を利用した従業員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は従業員を新規作成します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employees (id, document_number, email, first_name, last_name, birth_date, hire_date, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING `+employeeColumns,
		e.ID,
		e.DocumentNumber,
		e.Email,
		e.FirstName,
		e.LastName,
		dateOnly(e.BirthDate),
		dateOnly(e.HireDate),
		e.CreatedAt,
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return created, nil
}

// Update は従業員情報を更新します。
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE employees
           SET document_number = $1,
               email = $2,
               first_name = $3,
               last_name = $4,
               birth_date = $5,
               hire_date = $6
         WHERE id = $7
        RETURNING `+employeeColumns,
		e.DocumentNumber,
		e.Email,
		e.FirstName,
		e.LastName,
		dateOnly(e.BirthDate),
		dateOnly(e.HireDate),
		e.ID,
	)

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return updated, nil
}

// Delete は従業員を削除します。
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// FindByID は ID で従業員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

// FindByDocumentNumber は書類番号で従業員を取得します。
func (r *EmployeeRepository) FindByDocumentNumber(ctx context.Context, documentNumber int) (*employee.Employee, error) {
	return r.findOne(ctx, `WHERE document_number = $1`, documentNumber)
}

// FindByEmail はメールアドレスで従業員を取得します。
func (r *EmployeeRepository) FindByEmail(ctx context.Context, email string) (*employee.Employee, error) {
	return r.findOne(ctx, `WHERE email = $1`, email)
}

func (r *EmployeeRepository) findOne(ctx context.Context, where string, arg any) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         `+where+`
         LIMIT 1
    `, arg)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// ExistsByDocumentNumber は書類番号の従業員が存在するかを返します。
func (r *EmployeeRepository) ExistsByDocumentNumber(ctx context.Context, documentNumber int) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var exists bool
	if err := exec.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM employees WHERE document_number = $1)`, documentNumber).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// List は従業員の一覧を登録順に取得します。
func (r *EmployeeRepository) List(ctx context.Context) ([]*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         ORDER BY created_at, id
    `)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, translateEmployeePgError(err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, translateEmployeePgError(err)
	}

	return employees, nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		id             string
		documentNumber int
		email          string
		firstName      string
		lastName       string
		birthDate      time.Time
		hireDate       time.Time
		createdAt      time.Time
	)

	if err := row.Scan(
		&id,
		&documentNumber,
		&email,
		&firstName,
		&lastName,
		&birthDate,
		&hireDate,
		&createdAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	return &employee.Employee{
		ID:             id,
		DocumentNumber: documentNumber,
		Email:          email,
		FirstName:      firstName,
		LastName:       lastName,
		BirthDate:      dateOnly(birthDate),
		HireDate:       dateOnly(hireDate),
		CreatedAt:      createdAt,
	}, nil
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			switch pgErr.ConstraintName {
			case employeesDocumentKey:
				return employee.ErrDocumentAlreadyExists
			case employeesEmailKey:
				return employee.ErrEmailAlreadyExists
			}
		case foreignKeyViolationCode:
			// 勤務記録からの参照が残っている場合の削除です。
			return employee.ErrHasShifts
		case invalidTextRepresentationCode:
			// UUID として解釈できない id です。
			return employee.ErrEmployeeNotFound
		}
	}

	return err
}

func dateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
