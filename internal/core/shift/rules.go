package shift

import (
	"fmt"
	"time"

	"github.com/ogurasousui/codex-shift-clean-arch/internal/core/concept"
)

// Rule は検証ルールの識別子です。
type Rule string

const (
	RuleHoursRequired       Rule = "hours_required"
	RuleHoursForbidden      Rule = "hours_forbidden"
	RuleHoursRange          Rule = "hours_range"
	RuleWeeklyHours         Rule = "weekly_hours"
	RuleDailyHours          Rule = "daily_hours"
	RuleMonthlyHours        Rule = "monthly_hours"
	RuleWeeklyDaysOff       Rule = "weekly_days_off"
	RuleMonthlyDaysOff      Rule = "monthly_days_off"
	RuleWeeklyExtraShifts   Rule = "weekly_extra_shifts"
	RuleWeeklyRegularShifts Rule = "weekly_regular_shifts"
	RuleDailyHeadcount      Rule = "daily_headcount"
	RuleDuplicateConcept    Rule = "duplicate_concept"
)

// Limits は労務ルールの上限値です。
type Limits struct {
	WeeklyHours         int
	DailyHours          int
	MonthlyHours        int
	WeeklyDaysOff       int
	MonthlyDaysOff      int
	WeeklyExtraShifts   int
	WeeklyRegularShifts int
	DailyHeadcount      int
}

// DefaultLimits は標準の上限値を返します。
func DefaultLimits() Limits {
	return Limits{
		WeeklyHours:         52,
		DailyHours:          14,
		MonthlyHours:        190,
		WeeklyDaysOff:       2,
		MonthlyDaysOff:      5,
		WeeklyExtraShifts:   3,
		WeeklyRegularShifts: 5,
		DailyHeadcount:      2,
	}
}

// withDefaults は 0 以下の項目を標準値で補います。
func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	fill := func(v *int, def int) {
		if *v <= 0 {
			*v = def
		}
	}
	fill(&l.WeeklyHours, d.WeeklyHours)
	fill(&l.DailyHours, d.DailyHours)
	fill(&l.MonthlyHours, d.MonthlyHours)
	fill(&l.WeeklyDaysOff, d.WeeklyDaysOff)
	fill(&l.MonthlyDaysOff, d.MonthlyDaysOff)
	fill(&l.WeeklyExtraShifts, d.WeeklyExtraShifts)
	fill(&l.WeeklyRegularShifts, d.WeeklyRegularShifts)
	fill(&l.DailyHeadcount, d.DailyHeadcount)
	return l
}

// Proposal は登録しようとしている勤務記録です。
type Proposal struct {
	Concept     *concept.WorkConcept
	Date        time.Time
	WorkedHours *int
}

func (p Proposal) hours() int {
	if p.WorkedHours == nil {
		return 0
	}
	return *p.WorkedHours
}

// Decision は検証結果です。Rule が空であれば受理を表します。
type Decision struct {
	Rule   Rule
	Reason string
}

// Accepted は提案が受理されたかを返します。
func (d Decision) Accepted() bool {
	return d.Rule == ""
}

// Err は却下であれば *RuleViolation を、受理であれば nil を返します。
func (d Decision) Err() error {
	if d.Accepted() {
		return nil
	}
	return &RuleViolation{Rule: d.Rule, Reason: d.Reason}
}

var accept = Decision{}

func reject(rule Rule, format string, args ...any) Decision {
	return Decision{Rule: rule, Reason: fmt.Sprintf(format, args...)}
}

type check func(l Limits, p Proposal, s *Snapshot) Decision

// Engine は勤務記録の検証ルールを定められた順序で評価します。
// 入出力を持たないため並行に呼び出して構いません。
type Engine struct {
	limits Limits
	checks []check
}

// NewEngine は Engine を生成します。
func NewEngine(limits Limits) *Engine {
	return &Engine{
		limits: limits.withDefaults(),
		checks: []check{
			checkHoursPresence,
			checkHoursRange,
			checkWeeklyHours,
			checkDailyHours,
			checkMonthlyHours,
			checkDaysOff,
			checkExtraShifts,
			checkRegularShifts,
			checkDailyHeadcount,
			checkDuplicateConcept,
		},
	}
}

// Limits は適用中の上限値を返します。
func (e *Engine) Limits() Limits {
	return e.limits
}

// Validate は最初に違反したルールで評価を打ち切ります。
func (e *Engine) Validate(p Proposal, s *Snapshot) Decision {
	if s == nil {
		s = &Snapshot{}
	}
	for _, c := range e.checks {
		if d := c(e.limits, p, s); !d.Accepted() {
			return d
		}
	}
	return accept
}

// DuplicateDecision は一意制約違反をルール違反として表します。
func DuplicateDecision() Decision {
	return reject(RuleDuplicateConcept, "El empleado ya tiene registrado una jornada con este concepto en la fecha ingresada.")
}

func checkHoursPresence(_ Limits, p Proposal, _ *Snapshot) Decision {
	dayOff := p.Concept.IsDayOff()
	if !dayOff && p.WorkedHours == nil {
		return reject(RuleHoursRequired, "'hsTrabajadas' es obligatorio para el concepto ingresado.")
	}
	if dayOff && p.WorkedHours != nil {
		return reject(RuleHoursForbidden, "El concepto ingresado no requiere el ingreso de 'hsTrabajadas'")
	}
	return accept
}

func checkHoursRange(_ Limits, p Proposal, _ *Snapshot) Decision {
	minHours, maxHours, ok := p.Concept.HourRange()
	if !ok || p.WorkedHours == nil {
		return accept
	}
	if h := *p.WorkedHours; h < minHours || h > maxHours {
		return reject(RuleHoursRange, "El rango de horas que se puede cargar para este concepto es de %d - %d", minHours, maxHours)
	}
	return accept
}

func checkWeeklyHours(l Limits, p Proposal, s *Snapshot) Decision {
	if sumHours(s.Weekly)+p.hours() > l.WeeklyHours {
		return reject(RuleWeeklyHours, "El empleado ingresado supera las %d horas semanales.", l.WeeklyHours)
	}
	return accept
}

func checkDailyHours(l Limits, p Proposal, s *Snapshot) Decision {
	daily := 0
	for _, r := range s.Weekly {
		if sameDay(r.Date, p.Date) {
			daily += r.Hours()
		}
	}
	if daily+p.hours() > l.DailyHours {
		return reject(RuleDailyHours, "Un empleado no puede cargar más de %d horas trabajadas en un día.", l.DailyHours)
	}
	return accept
}

func checkMonthlyHours(l Limits, p Proposal, s *Snapshot) Decision {
	if sumHours(s.Monthly)+p.hours() > l.MonthlyHours {
		return reject(RuleMonthlyHours, "El empleado ingresado supera las %d horas mensuales.", l.MonthlyHours)
	}
	return accept
}

func checkDaysOff(l Limits, p Proposal, s *Snapshot) Decision {
	if !p.Concept.IsDayOff() {
		return accept
	}
	if countKind(s.Weekly, concept.KindDayOff) >= l.WeeklyDaysOff {
		return reject(RuleWeeklyDaysOff, "El empleado no cuenta con más días libres esta semana.")
	}
	if countKind(s.Monthly, concept.KindDayOff) >= l.MonthlyDaysOff {
		return reject(RuleMonthlyDaysOff, "El empleado no cuenta con más días libres este mes.")
	}
	return accept
}

func checkExtraShifts(l Limits, p Proposal, s *Snapshot) Decision {
	if p.Concept.Kind() != concept.KindExtra {
		return accept
	}
	if countKind(s.Weekly, concept.KindExtra) >= l.WeeklyExtraShifts {
		return reject(RuleWeeklyExtraShifts, "El empleado ingresado ya cuenta con %d turnos extra esta semana.", l.WeeklyExtraShifts)
	}
	return accept
}

func checkRegularShifts(l Limits, p Proposal, s *Snapshot) Decision {
	if p.Concept.Kind() != concept.KindRegular {
		return accept
	}
	if countKind(s.Weekly, concept.KindRegular) >= l.WeeklyRegularShifts {
		return reject(RuleWeeklyRegularShifts, "El empleado ingresado ya cuenta con %d turnos normales esta semana.", l.WeeklyRegularShifts)
	}
	return accept
}

func checkDailyHeadcount(l Limits, _ Proposal, s *Snapshot) Decision {
	if s.SameDayConceptCount >= l.DailyHeadcount {
		return reject(RuleDailyHeadcount, "Ya existen %d empleados registrados para este concepto en la fecha ingresada.", l.DailyHeadcount)
	}
	return accept
}

func checkDuplicateConcept(_ Limits, _ Proposal, s *Snapshot) Decision {
	if s.AlreadyRegistered {
		return DuplicateDecision()
	}
	return accept
}

func sumHours(records []*Record) int {
	total := 0
	for _, r := range records {
		total += r.Hours()
	}
	return total
}

func countKind(records []*Record, kind concept.Kind) int {
	n := 0
	for _, r := range records {
		if r.Kind() == kind {
			n++
		}
	}
	return n
}
