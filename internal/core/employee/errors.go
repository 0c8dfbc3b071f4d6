package employee

import "errors"

var (
	ErrInvalidID             = errors.New("El id de empleado ingresado no es válido.")
	ErrInvalidFirstName      = errors.New("Solo se permiten letras en el campo 'nombre'.")
	ErrInvalidLastName       = errors.New("Solo se permiten letras en el campo 'apellido'.")
	ErrInvalidEmail          = errors.New("El email ingresado no es correcto.")
	ErrInvalidDocumentNumber = errors.New("El número de documento debe tener entre 7 y 8 dígitos.")
	ErrMissingBirthDate      = errors.New("La fecha de nacimiento es obligatoria.")
	ErrMissingHireDate       = errors.New("La fecha de ingreso es obligatoria.")
	ErrUnderage              = errors.New("La edad del empleado no puede ser menor a 18 años.")
	ErrHireDateInFuture      = errors.New("La fecha de ingreso no puede ser posterior al día de la fecha.")
	ErrEmployeeNotFound      = errors.New("No se encontró el empleado.")
	ErrHasShifts             = errors.New("No es posible eliminar un empleado con jornadas asociadas.")

	// 一意制約違反は Conflict として扱います。
	ErrDocumentAlreadyExists = errors.New("Ya existe un empleado con el documento ingresado.")
	ErrEmailAlreadyExists    = errors.New("Ya existe un empleado con el email ingresado.")
)
