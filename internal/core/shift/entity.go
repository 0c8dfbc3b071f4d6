package shift

import (
	"time"

	"github.com/ogurasousui/codex-shift-clean-arch/internal/core/concept"
	"github.com/ogurasousui/codex-shift-clean-arch/internal/core/employee"
)

// Record は従業員 1 人・1 日分の勤務記録 (jornada) です。作成後は変更しません。
type Record struct {
	ID          string
	EmployeeID  string
	ConceptID   int
	Date        time.Time
	WorkedHours *int
	CreatedAt   time.Time

	// 読み取り時に結合される参照情報です。
	Employee *employee.Employee
	Concept  *concept.WorkConcept
}

// Hours は勤務時間を返します。未入力は 0 として扱います。
func (r *Record) Hours() int {
	if r == nil || r.WorkedHours == nil {
		return 0
	}
	return *r.WorkedHours
}

// Kind は記録の勤務区分種別を返します。
func (r *Record) Kind() concept.Kind {
	if r == nil {
		return concept.KindOther
	}
	return r.Concept.Kind()
}

// View は呼び出し元へ返却する勤務記録の表現です。
type View struct {
	ID             string
	DocumentNumber int
	FullName       string
	Date           time.Time
	Concept        string
	WorkedHours    *int
}

// NewView は Record から View を組み立てます。休日区分では勤務時間を含めません。
func NewView(r *Record) View {
	v := View{ID: r.ID, Date: r.Date}
	if r.Employee != nil {
		v.DocumentNumber = r.Employee.DocumentNumber
		v.FullName = r.Employee.FullName()
	}
	if r.Concept != nil {
		v.Concept = r.Concept.Name
	}
	if r.WorkedHours != nil && !r.Concept.IsDayOff() {
		hours := *r.WorkedHours
		v.WorkedHours = &hours
	}
	return v
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
