package apperrors

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrNoLotColumn      = errors.New("no lot column identified")
	ErrUnsafeIdentifier = errors.New("identifier contains disallowed characters")
)
