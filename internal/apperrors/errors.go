package apperrors

import "errors"

var (
	ErrValidation   = errors.New("invalid request")
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("resource already exists")
	ErrUnauthorized = errors.New("unauthorized")
	ErrStorage      = errors.New("storage failure")
)
