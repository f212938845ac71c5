package service

import "errors"

// Error kinds. Handlers translate these into HTTP statuses; everything a
// service returns wraps exactly one of them.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("permission denied")
	ErrAuthFailed = errors.New("authentication failed")
	ErrDispatch   = errors.New("mail dispatch failed")
)

// Error carries a user-facing message on top of one of the kind sentinels,
// so errors.Is(err, ErrValidation) etc. keeps working.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func validation(msg string) error { return &Error{Kind: ErrValidation, Message: msg} }

func notFound(msg string) error { return &Error{Kind: ErrNotFound, Message: msg} }

func forbidden(msg string) error { return &Error{Kind: ErrForbidden, Message: msg} }

func authFailed(msg string) error { return &Error{Kind: ErrAuthFailed, Message: msg} }

func dispatch(msg string) error { return &Error{Kind: ErrDispatch, Message: msg} }
