package shift

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ogurasousui/codex-shift-clean-arch/internal/core/concept"
	"github.com/ogurasousui/codex-shift-clean-arch/internal/core/employee"
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

// EmployeeStore は登録処理が参照する従業員ストアです。
type EmployeeStore interface {
	FindByID(ctx context.Context, id string) (*employee.Employee, error)
	ExistsByDocumentNumber(ctx context.Context, documentNumber int) (bool, error)
}

// ConceptStore は登録処理が参照する勤務区分カタログです。
type ConceptStore interface {
	FindByID(ctx context.Context, id int) (*concept.WorkConcept, error)
}

// Recorder は登録結果を計測します。
type Recorder interface {
	Accepted(conceptName string)
	Rejected(rule string)
}

type noopRecorder struct{}

func (noopRecorder) Accepted(string) {}
func (noopRecorder) Rejected(string) {}

// UseCase は勤務記録ユースケースの公開インターフェースです。
type UseCase interface {
	CreateShift(ctx context.Context, in CreateShiftInput) (*View, error)
	ListShifts(ctx context.Context, in ListShiftsInput) ([]View, error)
}

// CreateShiftInput は勤務記録登録時の入力です。
type CreateShiftInput struct {
	EmployeeID  string
	ConceptID   int
	Date        time.Time
	WorkedHours *int
}

// ListShiftsInput は勤務記録一覧の入力です。
type ListShiftsInput struct {
	From           *time.Time
	To             *time.Time
	DocumentNumber *int
}

// Option は Service の任意設定です。
type Option func(*Service)

// WithClock は時刻源を差し替えます。
func WithClock(c Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithTransactionManager はトランザクション制御を設定します。
func WithTransactionManager(tx TransactionManager) Option {
	return func(s *Service) {
		if tx != nil {
			s.tx = tx
		}
	}
}

// WithLogger はロガーを設定します。
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLimits は検証ルールの上限値を設定します。
func WithLimits(l Limits) Option {
	return func(s *Service) {
		s.engine = NewEngine(l)
	}
}

// WithRecorder は計測先を設定します。
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// Service は勤務記録の登録と参照を行います。
type Service struct {
	repo      Repository
	employees EmployeeStore
	concepts  ConceptStore
	history   *History
	engine    *Engine
	clock     Clock
	tx        TransactionManager
	recorder  Recorder
	logger    *zap.Logger
}

// NewService は Service を生成します。
func NewService(repo Repository, employees EmployeeStore, concepts ConceptStore, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		employees: employees,
		concepts:  concepts,
		history:   NewHistory(repo),
		engine:    NewEngine(DefaultLimits()),
		clock:     realClock{},
		tx:        noopTransactionManager{},
		recorder:  noopRecorder{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("shift")
	return s
}

// CreateShift は検証ルールをすべて満たした場合に勤務記録を登録します。
// 読み取りから書き込みまでを 1 つのトランザクションで行い、登録ロックで同時登録を直列化します。
func (s *Service) CreateShift(ctx context.Context, in CreateShiftInput) (*View, error) {
	employeeID := strings.TrimSpace(in.EmployeeID)
	if employeeID == "" {
		return nil, ErrInvalidEmployee
	}
	// UUID 形式でない id に一致する従業員は存在しません。
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, ErrEmployeeNotFound
	}
	if in.ConceptID <= 0 {
		return nil, ErrInvalidConcept
	}
	if in.Date.IsZero() {
		return nil, ErrMissingDate
	}
	date := normalizeDate(in.Date)

	var saved *Record
	err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		// 登録ロックはトランザクション内のどの読み取りよりも先に取得します。
		if err := s.repo.LockForRegistration(txCtx, employeeID, date, in.ConceptID); err != nil {
			return err
		}

		emp, err := s.employees.FindByID(txCtx, employeeID)
		if err != nil {
			if errors.Is(err, employee.ErrEmployeeNotFound) {
				return ErrEmployeeNotFound
			}
			return err
		}

		workConcept, err := s.concepts.FindByID(txCtx, in.ConceptID)
		if err != nil {
			return err
		}

		snapshot, err := s.history.Snapshot(txCtx, emp.ID, workConcept.ID, date)
		if err != nil {
			return err
		}

		decision := s.engine.Validate(Proposal{Concept: workConcept, Date: date, WorkedHours: in.WorkedHours}, snapshot)
		if !decision.Accepted() {
			return decision.Err()
		}

		record, err := s.repo.Save(txCtx, &Record{
			ID:          uuid.NewString(),
			EmployeeID:  emp.ID,
			ConceptID:   workConcept.ID,
			Date:        date,
			WorkedHours: cloneInt(in.WorkedHours),
			CreatedAt:   s.clock.Now(),
		})
		if err != nil {
			if errors.Is(err, ErrDuplicateShift) {
				return DuplicateDecision().Err()
			}
			return err
		}

		record.Employee = emp
		record.Concept = workConcept
		saved = record
		return nil
	})
	if err != nil {
		var violation *RuleViolation
		if errors.As(err, &violation) {
			s.recorder.Rejected(string(violation.Rule))
			s.logger.Info("shift rejected",
				zap.String("employee_id", employeeID),
				zap.Int("concept_id", in.ConceptID),
				zap.Time("date", date),
				zap.String("rule", string(violation.Rule)))
		}
		return nil, err
	}

	s.recorder.Accepted(saved.Concept.Name)
	s.logger.Info("shift registered",
		zap.String("id", saved.ID),
		zap.String("employee_id", saved.EmployeeID),
		zap.String("concept", saved.Concept.Name),
		zap.Time("date", saved.Date))

	view := NewView(saved)
	return &view, nil
}

// ListShifts は条件に一致する勤務記録を日付順に返します。
func (s *Service) ListShifts(ctx context.Context, in ListShiftsInput) ([]View, error) {
	if in.DocumentNumber != nil {
		if err := employee.ValidateDocumentNumber(*in.DocumentNumber); err != nil {
			return nil, err
		}
	}

	filter := ListFilter{}
	if in.From != nil {
		from := normalizeDate(*in.From)
		filter.From = &from
	}
	if in.To != nil {
		to := normalizeDate(*in.To)
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, ErrInvalidDateRange
	}

	var records []*Record
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		if in.DocumentNumber != nil {
			exists, err := s.employees.ExistsByDocumentNumber(txCtx, *in.DocumentNumber)
			if err != nil {
				return err
			}
			if !exists {
				return ErrDocumentNotFound
			}
			documentNumber := *in.DocumentNumber
			filter.DocumentNumber = &documentNumber
		}

		found, err := s.repo.List(txCtx, filter)
		if err != nil {
			return err
		}
		records = found
		return nil
	}); err != nil {
		return nil, err
	}

	views := make([]View, 0, len(records))
	for _, r := range records {
		views = append(views, NewView(r))
	}
	return views, nil
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
