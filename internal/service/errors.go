package service

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")
	ErrConflict         = errors.New("conflict")
	ErrCodesExhausted   = errors.New("package codes exhausted")
	ErrUpstream         = errors.New("upstream dependency failed")
)
