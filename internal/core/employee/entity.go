package employee

import "time"

// Employee は勤務記録の対象となる従業員エンティティです。
type Employee struct {
	ID             string
	DocumentNumber int
	Email          string
	FirstName      string
	LastName       string
	BirthDate      time.Time
	HireDate       time.Time
	CreatedAt      time.Time
}

// FullName は「名 姓」の形式で氏名を返します。
func (e *Employee) FullName() string {
	if e == nil {
		return ""
	}
	return e.FirstName + " " + e.LastName
}
