package domain

import "errors"

var (
	ErrUnknownDepartment = errors.New("unknown department")
)
