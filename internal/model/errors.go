package model

import "errors"

// ErrorKind classifies a domain error for propagation policy and HTTP
// status mapping
type ErrorKind int

const (
	KindValidation  ErrorKind = iota // malformed input (400)
	KindNotFound                     // unknown consultation/meeting (404)
	KindTiming                       // join outside the computed window (409)
	KindCapacity                     // participant cap reached (409)
	KindTransition                   // edge not in the state machine (409)
	KindProvider                     // primary and fallback provider failed (502)
	KindDispatch                     // invite dispatch failed (502)
	KindInternal                     // everything else (500)
)

// DomainError carries the semantic kind alongside the message
type DomainError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// KindOf returns the semantic kind of an error, defaulting to internal
func KindOf(err error) ErrorKind {
	var derr *DomainError
	if errors.As(err, &derr) {
		return derr.Kind
	}
	return KindInternal
}

// IsKind reports whether err classifies as the given kind
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

func NewValidationError(message string, errs ...error) *DomainError {
	return &DomainError{Kind: KindValidation, Message: message, Err: errors.Join(errs...)}
}

func NewNotFoundError(message string, errs ...error) *DomainError {
	return &DomainError{Kind: KindNotFound, Message: message, Err: errors.Join(errs...)}
}

func NewTimingError(message string) *DomainError {
	return &DomainError{Kind: KindTiming, Message: message}
}

func NewCapacityError(message string) *DomainError {
	return &DomainError{Kind: KindCapacity, Message: message}
}

func NewTransitionError(message string) *DomainError {
	return &DomainError{Kind: KindTransition, Message: message}
}

func NewProviderError(message string, errs ...error) *DomainError {
	return &DomainError{Kind: KindProvider, Message: message, Err: errors.Join(errs...)}
}

func NewDispatchError(message string, errs ...error) *DomainError {
	return &DomainError{Kind: KindDispatch, Message: message, Err: errors.Join(errs...)}
}

func NewInternalError(message string, errs ...error) *DomainError {
	return &DomainError{Kind: KindInternal, Message: message, Err: errors.Join(errs...)}
}
