// Package apperr is the single place where errors are classified and translated
// into HTTP statuses. Handlers and services return these instead of repeating
// per-controller status mapping.
package apperr

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindInternal
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Msg: msg} }

func Wrap(kind Kind, msg string, err error) *Error { return &Error{Kind: kind, Msg: msg, Err: err} }

func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Msg: msg} }

func Forbidden(msg string) *Error { return &Error{Kind: KindForbidden, Msg: msg} }

func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Msg: msg} }

func Conflict(msg string) *Error { return &Error{Kind: KindConflict, Msg: msg} }

// StatusCode maps any error to its HTTP status.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		switch e.Kind {
		case KindValidation:
			return fiber.StatusBadRequest
		case KindUnauthorized:
			return fiber.StatusUnauthorized
		case KindForbidden:
			return fiber.StatusForbidden
		case KindNotFound:
			return fiber.StatusNotFound
		case KindConflict:
			return fiber.StatusConflict
		}
		return fiber.StatusInternalServerError
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.StatusNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fiber.StatusConflict
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler is installed as the fiber app ErrorHandler.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := StatusCode(err)
	msg := err.Error()
	if code == fiber.StatusInternalServerError {
		log.Printf("internal error on %s %s: %v", c.Method(), c.Path(), err)
		msg = "Internal Server Error"
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		msg = "record not found"
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
