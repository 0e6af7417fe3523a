package domain

import (
	"errors"
	"fmt"
)

// Переменные-ошибки, которые возвращаются из Use Cases и адаптеров.
// REST-слой сопоставляет их с HTTP-статусами через errors.Is.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrAlreadyExists   = errors.New("already exists")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrTokenInvalid    = errors.New("invalid token")
)

// Error - ошибка бизнес-правила с сообщением для клиента.
// errors.Is(err, ErrNotFound) и т.п. работает через Unwrap.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Kind.Error() + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Errorf создает ошибку заданного вида с форматированным сообщением.
func Errorf(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
