package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the request conflicts with the current state of the resource.
var ErrConflict = errors.New("conflict with current resource state")

// ErrForbidden indicates that the caller is not allowed to perform the action.
var ErrForbidden = errors.New("action forbidden")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// ErrRemote indicates that a call to the remote accounting API failed
// (network error or 5xx response). Callers must not assume any part of the
// batch was applied when this is returned.
var ErrRemote = errors.New("remote accounting API error")
