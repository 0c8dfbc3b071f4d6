package concept

import "errors"

var (
	ErrConceptNotFound = errors.New("No existe el concepto ingresado.")
	ErrInvalidID       = errors.New("El campo 'id' debe ser un número entero positivo.")
)
