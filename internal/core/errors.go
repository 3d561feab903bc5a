package core

import "errors"

// Error kinds shared by every layer. Callers wrap them with context and
// match with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrPermission = errors.New("permission denied")
	ErrStorage    = errors.New("storage unavailable")
)
