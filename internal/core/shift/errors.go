package shift

import "errors"

var (
	ErrEmployeeNotFound = errors.New("No existe el empleado ingresado.")
	ErrDocumentNotFound = errors.New("No existe un empleado con el número de documento ingresado.")
	ErrInvalidDateRange = errors.New("El campo ‘fechaDesde’ no puede ser mayor que ‘fechaHasta’.")
	ErrInvalidEmployee  = errors.New("idEmpleado es obligatorio")
	ErrInvalidConcept   = errors.New("idConcepto es obligatorio")
	ErrMissingDate      = errors.New("fecha es obligatoria")

	// ErrRejected は検証ルール違反すべてが包む共通のエラーです。
	ErrRejected = errors.New("shift: rejected")

	// ErrDuplicateShift は一意制約 (従業員・日付・区分) 違反時にリポジトリが返します。
	ErrDuplicateShift = errors.New("shift: duplicate employee/date/concept")
)

// RuleViolation は検証ルールに違反したことを表します。
type RuleViolation struct {
	Rule   Rule
	Reason string
}

func (e *RuleViolation) Error() string {
	return e.Reason
}

func (e *RuleViolation) Unwrap() error {
	return ErrRejected
}
