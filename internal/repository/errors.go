package repository

import "errors"

// ErrCodesExhausted is returned when a stretch has consumed package code
// "999" and no further allocation is possible.
var ErrCodesExhausted = errors.New("package codes exhausted for stretch")

// ErrStaleStatus is returned when a guarded status update matched no rows,
// meaning the contract left the expected status between read and write.
var ErrStaleStatus = errors.New("contract status changed concurrently")
