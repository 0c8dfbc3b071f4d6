package shift

import (
	"context"
	"time"
)

// Repository は勤務記録ストアの抽象です。
type Repository interface {
	// FindByEmployeeAndDateRange は従業員の勤務記録を日付範囲 (両端含む) で取得します。
	FindByEmployeeAndDateRange(ctx context.Context, employeeID string, from, to time.Time) ([]*Record, error)
	CountByDateAndConcept(ctx context.Context, date time.Time, conceptID int) (int, error)
	ExistsByEmployeeDateConcept(ctx context.Context, employeeID string, date time.Time, conceptID int) (bool, error)
	Save(ctx context.Context, record *Record) (*Record, error)
	List(ctx context.Context, filter ListFilter) ([]*Record, error)
	// LockForRegistration は同一従業員と同一 (日付, 区分) の登録をトランザクション終了まで直列化します。
	LockForRegistration(ctx context.Context, employeeID string, date time.Time, conceptID int) error
}

// ListFilter は一覧取得条件です。nil の条件は適用しません。
type ListFilter struct {
	From           *time.Time
	To             *time.Time
	DocumentNumber *int
}
