//go:build integration

package integration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	repo "github.com/ogurasousui/codex-shift-clean-arch/internal/adapters/repository/postgres"
	"github.com/ogurasousui/codex-shift-clean-arch/internal/core/concept"
	"github.com/ogurasousui/codex-shift-clean-arch/internal/core/employee"
	"github.com/ogurasousui/codex-shift-clean-arch/internal/core/shift"
	"github.com/ogurasousui/codex-shift-clean-arch/internal/platform/config"
	pg "github.com/ogurasousui/codex-shift-clean-arch/internal/platform/db/postgres"
)

const migrationsDir = "../assets/migrations"

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type stubClock struct {
	now time.Time
}

func (s stubClock) Now() time.Time {
	return s.now
}

type env struct {
	pool      *pgxpool.Pool
	employees *employee.Service
	shifts    *shift.Service
	concepts  *concept.Catalog
}

func setup(t *testing.T, opts ...pg.TxOption) *env {
	t.Helper()

	cfg, err := config.Load(configPathFromEnv())
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if err := resetMigrations(cfg.Database.DSN(), migrationsDir); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	ctx := context.Background()
	pool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	tx := pg.NewTransactionManager(pool, append([]pg.TxOption{pg.WithIsolation(cfg.Database.Isolation)}, opts...)...)
	conceptRepo := repo.NewConceptRepository(pool)
	employeeRepo := repo.NewEmployeeRepository(pool)
	shiftRepo := repo.NewShiftRepository(pool)

	return &env{
		pool:      pool,
		concepts:  concept.NewCatalog(conceptRepo, nil),
		employees: employee.NewService(employeeRepo, shiftRepo, stubClock{now: now}, tx, nil),
		shifts: shift.NewService(shiftRepo, employeeRepo, conceptRepo,
			shift.WithClock(stubClock{now: now}),
			shift.WithTransactionManager(tx)),
	}
}

func (e *env) hire(t *testing.T, n int) []*employee.Employee {
	t.Helper()

	birth := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	hire := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]*employee.Employee, 0, n)
	for i := 0; i < n; i++ {
		created, err := e.employees.CreateEmployee(context.Background(), employee.CreateEmployeeInput{
			DocumentNumber: 30000000 + i,
			Email:          fmt.Sprintf("empleado%d@example.com", i),
			FirstName:      "Empleado",
			LastName:       "Prueba",
			BirthDate:      &birth,
			HireDate:       &hire,
		})
		if err != nil {
			t.Fatalf("CreateEmployee error: %v", err)
		}
		out = append(out, created)
	}
	return out
}

// 同じ DB を使うため各テストは直列に実行します。
func TestShiftRegistryIntegration(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	concepts, err := e.concepts.FindConcepts(ctx, concept.FindConceptsInput{})
	if err != nil {
		t.Fatalf("FindConcepts error: %v", err)
	}
	if len(concepts) != 3 || concepts[2].Kind() != concept.KindDayOff {
		t.Fatalf("unexpected seeded concepts: %+v", concepts)
	}

	staff := e.hire(t, 5)
	day := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)

	t.Run("headcount holds under concurrent registration", func(t *testing.T) {
		e.assertHeadcount(t, staff[:4], day)
	})

	t.Run("duplicate concept holds under concurrent registration", func(t *testing.T) {
		regular := 8
		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			accepted int
		)
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := e.shifts.CreateShift(ctx, shift.CreateShiftInput{EmployeeID: staff[4].ID, ConceptID: 1, Date: day, WorkedHours: &regular})
				if err == nil {
					mu.Lock()
					accepted++
					mu.Unlock()
					return
				}
				if !errors.Is(err, shift.ErrRejected) {
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		if accepted != 1 {
			t.Fatalf("expected exactly one accepted registration, got %d", accepted)
		}
	})

	t.Run("listing returns stored shifts in date order", func(t *testing.T) {
		from := day
		to := day
		views, err := e.shifts.ListShifts(ctx, shift.ListShiftsInput{From: &from, To: &to})
		if err != nil {
			t.Fatalf("ListShifts error: %v", err)
		}
		if len(views) != 3 {
			t.Fatalf("expected 3 shifts, got %d", len(views))
		}

		document := staff[4].DocumentNumber
		own, err := e.shifts.ListShifts(ctx, shift.ListShiftsInput{DocumentNumber: &document})
		if err != nil {
			t.Fatalf("ListShifts error: %v", err)
		}
		if len(own) != 1 || own[0].Concept != concept.NameRegular {
			t.Fatalf("unexpected shifts for document: %+v", own)
		}

		unknown := 99999999
		if _, err := e.shifts.ListShifts(ctx, shift.ListShiftsInput{DocumentNumber: &unknown}); !errors.Is(err, shift.ErrDocumentNotFound) {
			t.Fatalf("expected ErrDocumentNotFound, got %v", err)
		}
	})

	t.Run("employee with shifts cannot be deleted", func(t *testing.T) {
		if err := e.employees.DeleteEmployee(ctx, employee.DeleteEmployeeInput{ID: staff[4].ID}); !errors.Is(err, employee.ErrHasShifts) {
			t.Fatalf("expected ErrHasShifts, got %v", err)
		}
	})
}

// 直列化失敗の再試行を含め、同日・同区分の登録が上限を超えないことを確認します。
func TestShiftRegistryIntegration_Serializable(t *testing.T) {
	e := setup(t, pg.WithIsolation("serializable"), pg.WithMaxRetries(5))

	e.assertHeadcount(t, e.hire(t, 4), time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC))
}

func (e *env) assertHeadcount(t *testing.T, staff []*employee.Employee, day time.Time) {
	t.Helper()

	ctx := context.Background()
	hours := 4
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected int
	)
	for _, emp := range staff {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := e.shifts.CreateShift(ctx, shift.CreateShiftInput{EmployeeID: id, ConceptID: 2, Date: day, WorkedHours: &hours})
			mu.Lock()
			defer mu.Unlock()
			var violation *shift.RuleViolation
			switch {
			case err == nil:
				accepted++
			case errors.As(err, &violation) && violation.Rule == shift.RuleDailyHeadcount:
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(emp.ID)
	}
	wg.Wait()

	if accepted != 2 || rejected != len(staff)-2 {
		t.Fatalf("expected 2 accepted and %d rejected, got %d/%d", len(staff)-2, accepted, rejected)
	}

	from, to := day, day
	views, err := e.shifts.ListShifts(ctx, shift.ListShiftsInput{From: &from, To: &to})
	if err != nil {
		t.Fatalf("ListShifts error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 stored shifts for the day, got %d", len(views))
	}
}

func resetMigrations(dsn, dir string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	m, err := migrate.New("file://"+filepath.ToSlash(absDir), dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func configPathFromEnv() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "../assets/local.yaml"
}
