// Package errs holds the domain error taxonomy shared by the authorization
// layer, the services and the HTTP surface.
package errs

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindInsufficientPermissions
	KindUserNotFound
	KindAlreadyMember
	KindCannotRemoveOwner
	KindAssigneeNotMember
	KindConflict
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindNotFound:
		return "NotFound"
	case KindInsufficientPermissions:
		return "InsufficientPermissions"
	case KindUserNotFound:
		return "UserNotFound"
	case KindAlreadyMember:
		return "AlreadyMember"
	case KindCannotRemoveOwner:
		return "CannotRemoveOwner"
	case KindAssigneeNotMember:
		return "AssigneeNotMember"
	case KindConflict:
		return "Conflict"
	case KindUnauthenticated:
		return "Unauthenticated"
	default:
		return "Internal"
	}
}

// Error is a terminal domain failure. Two errors match under errors.Is when
// their kinds are equal, so callers compare against the sentinels below.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrValidation              = &Error{Kind: KindValidation, Msg: "invalid input"}
	ErrNotFound                = &Error{Kind: KindNotFound, Msg: "not found"}
	ErrInsufficientPermissions = &Error{Kind: KindInsufficientPermissions, Msg: "insufficient permissions"}
	ErrUserNotFound            = &Error{Kind: KindUserNotFound, Msg: "user not found"}
	ErrAlreadyMember           = &Error{Kind: KindAlreadyMember, Msg: "user is already a member of this project"}
	ErrCannotRemoveOwner       = &Error{Kind: KindCannotRemoveOwner, Msg: "cannot remove project owner"}
	ErrAssigneeNotMember       = &Error{Kind: KindAssigneeNotMember, Msg: "assigned user is not a member of this project"}
	ErrConflict                = &Error{Kind: KindConflict, Msg: "conflict"}
	ErrUnauthenticated         = &Error{Kind: KindUnauthenticated, Msg: "invalid email or password"}
)

func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error {
	return New(KindValidation, format, args...)
}

func NotFound(what string) error {
	return New(KindNotFound, "%s not found", what)
}

func InsufficientPermissions(format string, args ...any) error {
	return New(KindInsufficientPermissions, format, args...)
}

// KindOf reports the domain kind of err, KindInternal for anything that is
// not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
