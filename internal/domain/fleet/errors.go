package fleet

import "errors"

var (
	ErrValidation      = errors.New("validation error")
	ErrModelNotFound   = errors.New("car model not found")
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrDuplicatePlate  = errors.New("license plate already registered")
	ErrDuplicateModel  = errors.New("car model already exists")
	ErrUnknownStatus   = errors.New("unknown vehicle status")
)
