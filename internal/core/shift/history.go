package shift

import (
	"context"
	"fmt"
	"time"
)

// WeekBounds は date を含む週の月曜日と日曜日を返します。
func WeekBounds(date time.Time) (time.Time, time.Time) {
	day := normalizeDate(date)
	offset := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 6)
}

// MonthBounds は date を含む月の初日と末日を返します。
func MonthBounds(date time.Time) (time.Time, time.Time) {
	day := normalizeDate(date)
	start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}

// Snapshot は 1 回の検証で参照する勤務履歴です。提案中の記録は含みません。
type Snapshot struct {
	Weekly  []*Record
	Monthly []*Record
	// SameDayConceptCount は全従業員を対象にした同日・同区分の既存件数です。
	SameDayConceptCount int
	// AlreadyRegistered は同じ従業員が同日・同区分の記録を持っているかを示します。
	AlreadyRegistered bool
}

// History は勤務記録ストアに対する読み取り専用の問い合わせをまとめます。
type History struct {
	repo Repository
}

// NewHistory は History を生成します。
func NewHistory(repo Repository) *History {
	return &History{repo: repo}
}

// Weekly は date を含む週の従業員の勤務記録を返します。
func (h *History) Weekly(ctx context.Context, employeeID string, date time.Time) ([]*Record, error) {
	from, to := WeekBounds(date)
	records, err := h.repo.FindByEmployeeAndDateRange(ctx, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("weekly shifts: %w", err)
	}
	return records, nil
}

// Monthly は date を含む月の従業員の勤務記録を返します。
func (h *History) Monthly(ctx context.Context, employeeID string, date time.Time) ([]*Record, error) {
	from, to := MonthBounds(date)
	records, err := h.repo.FindByEmployeeAndDateRange(ctx, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("monthly shifts: %w", err)
	}
	return records, nil
}

// Snapshot は検証に必要な履歴をまとめて取得します。
func (h *History) Snapshot(ctx context.Context, employeeID string, conceptID int, date time.Time) (*Snapshot, error) {
	weekly, err := h.Weekly(ctx, employeeID, date)
	if err != nil {
		return nil, err
	}

	monthly, err := h.Monthly(ctx, employeeID, date)
	if err != nil {
		return nil, err
	}

	count, err := h.repo.CountByDateAndConcept(ctx, date, conceptID)
	if err != nil {
		return nil, fmt.Errorf("count by date and concept: %w", err)
	}

	exists, err := h.repo.ExistsByEmployeeDateConcept(ctx, employeeID, date, conceptID)
	if err != nil {
		return nil, fmt.Errorf("exists by employee, date and concept: %w", err)
	}

	return &Snapshot{
		Weekly:              weekly,
		Monthly:             monthly,
		SameDayConceptCount: count,
		AlreadyRegistered:   exists,
	}, nil
}
