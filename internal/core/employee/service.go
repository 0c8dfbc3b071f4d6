package employee

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

const (
	minDocumentNumber = 1_000_000
	maxDocumentNumber = 99_999_999
	minimumAge        = 18
)

var namePattern = regexp.MustCompile(`^\p{L}+(?: \p{L}+)*$`)

// Service は従業員に関するユースケースをまとめます。
type Service struct {
	repo   Repository
	shifts ShiftCounter
	clock  Clock
	tx     TransactionManager
	logger *zap.Logger
}

// UseCase は従業員ユースケースの公開インターフェースです。
type UseCase interface {
	CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error)
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error)
	ListEmployees(ctx context.Context) ([]*Employee, error)
	UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error)
	DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error
}

// NewService は Service を生成します。
func NewService(repo Repository, shifts ShiftCounter, clock Clock, tx TransactionManager, logger *zap.Logger) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, shifts: shifts, clock: clock, tx: tx, logger: logger.Named("employee")}
}

// CreateEmployeeInput は従業員登録時の入力です。
type CreateEmployeeInput struct {
	DocumentNumber int
	Email          string
	FirstName      string
	LastName       string
	BirthDate      *time.Time
	HireDate       *time.Time
}

// UpdateEmployeeInput は従業員更新時の入力です。nil のフィールドは変更しません。
type UpdateEmployeeInput struct {
	ID             string
	DocumentNumber *int
	Email          *string
	FirstName      *string
	LastName       *string
	BirthDate      *time.Time
	HireDate       *time.Time
}

// GetEmployeeInput は従業員取得時の入力です。
type GetEmployeeInput struct {
	ID string
}

// DeleteEmployeeInput は従業員削除時の入力です。
type DeleteEmployeeInput struct {
	ID string
}

// CreateEmployee は新しい従業員を登録します。
func (s *Service) CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error) {
	firstName, err := normalizeName(in.FirstName, ErrInvalidFirstName)
	if err != nil {
		return nil, err
	}

	lastName, err := normalizeName(in.LastName, ErrInvalidLastName)
	if err != nil {
		return nil, err
	}

	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}

	if err := ValidateDocumentNumber(in.DocumentNumber); err != nil {
		return nil, err
	}

	now := s.clock.Now()

	if in.BirthDate == nil {
		return nil, ErrMissingBirthDate
	}
	birthDate := normalizeDate(*in.BirthDate)
	if err := validateAge(birthDate, now); err != nil {
		return nil, err
	}

	if in.HireDate == nil {
		return nil, ErrMissingHireDate
	}
	hireDate := normalizeDate(*in.HireDate)
	if err := validateHireDate(hireDate, now); err != nil {
		return nil, err
	}

	var created *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureDocumentAvailable(txCtx, in.DocumentNumber, ""); err != nil {
			return err
		}
		if err := s.ensureEmailAvailable(txCtx, email, ""); err != nil {
			return err
		}

		emp := &Employee{
			ID:             uuid.NewString(),
			DocumentNumber: in.DocumentNumber,
			Email:          email,
			FirstName:      firstName,
			LastName:       lastName,
			BirthDate:      birthDate,
			HireDate:       hireDate,
			CreatedAt:      now,
		}

		result, err := s.repo.Create(txCtx, emp)
		if err != nil {
			return err
		}

		created = result
		return nil
	}); err != nil {
		s.logger.Warn("employee not created", zap.Int("document_number", in.DocumentNumber), zap.Error(err))
		return nil, err
	}

	s.logger.Info("employee created", zap.String("id", created.ID))
	return created, nil
}

// UpdateEmployee は従業員情報を更新します。
func (s *Service) UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()

	var updated *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		if in.FirstName != nil {
			name, err := normalizeName(*in.FirstName, ErrInvalidFirstName)
			if err != nil {
				return err
			}
			existing.FirstName = name
		}

		if in.LastName != nil {
			name, err := normalizeName(*in.LastName, ErrInvalidLastName)
			if err != nil {
				return err
			}
			existing.LastName = name
		}

		if in.DocumentNumber != nil {
			if err := ValidateDocumentNumber(*in.DocumentNumber); err != nil {
				return err
			}
			if *in.DocumentNumber != existing.DocumentNumber {
				if err := s.ensureDocumentAvailable(txCtx, *in.DocumentNumber, existing.ID); err != nil {
					return err
				}
				existing.DocumentNumber = *in.DocumentNumber
			}
		}

		if in.Email != nil {
			email, err := normalizeEmail(*in.Email)
			if err != nil {
				return err
			}
			if email != existing.Email {
				if err := s.ensureEmailAvailable(txCtx, email, existing.ID); err != nil {
					return err
				}
				existing.Email = email
			}
		}

		if in.BirthDate != nil {
			birthDate := normalizeDate(*in.BirthDate)
			if err := validateAge(birthDate, now); err != nil {
				return err
			}
			existing.BirthDate = birthDate
		}

		if in.HireDate != nil {
			hireDate := normalizeDate(*in.HireDate)
			if err := validateHireDate(hireDate, now); err != nil {
				return err
			}
			existing.HireDate = hireDate
		}

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}

		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	s.logger.Info("employee updated", zap.String("id", updated.ID))
	return updated, nil
}

// DeleteEmployee は勤務記録が存在しない従業員を削除します。
func (s *Service) DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error {
	id, err := normalizeID(in.ID)
	if err != nil {
		return err
	}

	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.FindByID(txCtx, id); err != nil {
			return err
		}

		if s.shifts != nil {
			count, err := s.shifts.CountByEmployee(txCtx, id)
			if err != nil {
				return fmt.Errorf("count shifts: %w", err)
			}
			if count > 0 {
				return ErrHasShifts
			}
		}

		return s.repo.Delete(txCtx, id)
	}); err != nil {
		if errors.Is(err, ErrHasShifts) {
			s.logger.Warn("employee with shifts not deleted", zap.String("id", id))
		}
		return err
	}

	s.logger.Info("employee deleted", zap.String("id", id))
	return nil
}

// GetEmployee は従業員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListEmployees は全従業員を登録順に返します。
func (s *Service) ListEmployees(ctx context.Context) ([]*Employee, error) {
	var employees []*Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.List(txCtx)
		if err != nil {
			return err
		}
		employees = found
		return nil
	}); err != nil {
		return nil, err
	}

	if employees == nil {
		employees = []*Employee{}
	}
	return employees, nil
}

func (s *Service) ensureDocumentAvailable(ctx context.Context, documentNumber int, selfID string) error {
	emp, err := s.repo.FindByDocumentNumber(ctx, documentNumber)
	if err != nil && !errors.Is(err, ErrEmployeeNotFound) {
		return err
	}
	if emp != nil && emp.ID != selfID {
		return ErrDocumentAlreadyExists
	}
	return nil
}

func (s *Service) ensureEmailAvailable(ctx context.Context, email, selfID string) error {
	emp, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrEmployeeNotFound) {
		return err
	}
	if emp != nil && emp.ID != selfID {
		return ErrEmailAlreadyExists
	}
	return nil
}

func normalizeID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidID
	}
	if _, err := uuid.Parse(trimmed); err != nil {
		return "", ErrInvalidID
	}
	return trimmed, nil
}

func normalizeName(raw string, invalid error) (string, error) {
	trimmed := strings.Join(strings.Fields(raw), " ")
	if trimmed == "" || !namePattern.MatchString(trimmed) {
		return "", invalid
	}
	return trimmed, nil
}

func normalizeEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidEmail
	}

	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(addr.Address), nil
}

// ValidateDocumentNumber は文書番号が 7 桁または 8 桁であることを確認します。
func ValidateDocumentNumber(n int) error {
	if n < minDocumentNumber || n > maxDocumentNumber {
		return ErrInvalidDocumentNumber
	}
	return nil
}

func validateAge(birthDate, now time.Time) error {
	today := normalizeDate(now)
	if birthDate.AddDate(minimumAge, 0, 0).After(today) {
		return ErrUnderage
	}
	return nil
}

func validateHireDate(hireDate, now time.Time) error {
	if hireDate.After(normalizeDate(now)) {
		return ErrHireDateInFuture
	}
	return nil
}

func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
