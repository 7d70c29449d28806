package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Root errors shared by the framework packages. Extensions register their
// own codes, starting at 100.
var (
	// ErrUnauthorized is returned when the caller is not allowed to
	// perform the requested operation.
	ErrUnauthorized = Register(2, "unauthorized")

	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = Register(3, "not found")

	// ErrMsg is returned when a message cannot be handled.
	ErrMsg = Register(4, "invalid message")

	// ErrModel is returned when an entity is invalid and cannot be
	// persisted.
	ErrModel = Register(5, "invalid model")

	// ErrDuplicate is returned when an entity with the same unique key
	// already exists.
	ErrDuplicate = Register(6, "duplicate")

	// ErrHuman is returned when a code path is reached that can only be
	// explained by a programming mistake.
	ErrHuman = Register(7, "coding error")

	// ErrEmpty is returned when a value fails a not empty assertion.
	ErrEmpty = Register(9, "value is empty")

	// ErrState is returned when an entity is in an unexpected state.
	ErrState = Register(10, "invalid state")

	// ErrType is returned whenever the type is not what was expected.
	ErrType = Register(11, "invalid type")

	// ErrAmount stands for an invalid quantity of whatever.
	ErrAmount = Register(13, "invalid amount")

	// ErrInput stands for general input problems.
	ErrInput = Register(14, "invalid input")

	// ErrOverflow is returned when a computation cannot be completed
	// because the result exceeds the type.
	ErrOverflow = Register(16, "value overflow")

	// ErrDatabase is returned when the underlying storage misbehaves.
	ErrDatabase = Register(17, "database")

	// ErrPanic is only set when we recover from a panic, so we know to
	// redact potentially sensitive system info.
	ErrPanic = Register(111222, "panic")
)

// Register returns an error instance that should be used as the base for
// creating error instances during runtime.
//
// Each code can be registered only once. An attempt to reuse a code panics,
// so call this function only during program initialization.
func Register(code uint32, description string) *Error {
	if e, ok := usedCodes[code]; ok {
		panic(fmt.Sprintf("error with code %d is already registered: %q", code, e.desc))
	}
	err := &Error{
		code: code,
		desc: description,
	}
	usedCodes[err.code] = err
	return err
}

// usedCodes keeps track of registered codes. Code 1 is reserved for errors
// that were not created by this package.
var usedCodes = map[uint32]*Error{
	1: nil,
}

// Error represents a root error.
//
// Every error returned at runtime should wrap one of the registered root
// errors. Callers categorize failures by testing the root with Is.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string {
	return e.desc
}

// Code returns the numeric code this error was registered with.
func (e Error) Code() uint32 {
	return e.code
}

// New returns a new error that has this error as its root cause. Below two
// lines are equal
//   e.New("my description")
//   Wrap(e, "my description")
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

// Newf is New with formatting capabilities.
func (e *Error) Newf(description string, args ...interface{}) error {
	return e.New(fmt.Sprintf(description, args...))
}

// Is checks if given error instance is of this kind. The error is unwrapped
// using the Cause method as long as it provides one.
func (e *Error) Is(err error) bool {
	if e == nil {
		return errIsNil(err)
	}

	for {
		if err == e {
			return true
		}
		c, ok := err.(causer)
		if !ok {
			return false
		}
		err = c.Cause()
	}
}

// Wrap extends given error with an additional information.
//
// If err is nil, this returns nil, so the result of a call can be returned
// directly at the end of a function.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}

	// Stack trace is recorded only once, at the innermost wrap.
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}

	return &wrappedError{
		parent: err,
		msg:    description,
	}
}

// Wrapf extends given error with a formatted description.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

type wrappedError struct {
	msg    string
	parent error
}

func (e *wrappedError) Error() string {
	return fmt.Sprintf("%s: %s", e.msg, e.parent.Error())
}

func (e *wrappedError) Cause() error {
	return e.parent
}

// Format prints the stack trace of the wrapped error when formatted with %+v.
func (e *wrappedError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s\n%+v", e.msg, e.parent)
		return
	}
	fmt.Fprint(s, e.Error())
}

// Recover captures a panic and stops its propagation. A recovered panic is
// transformed into an ErrPanic instance and assigned to given error. Call
// this function using defer.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

// WithType is a helper to augment an error with a corresponding type message.
func WithType(err error, obj interface{}) error {
	return Wrap(err, fmt.Sprintf("%T", obj))
}

// causer is implemented by errors that wrap another error.
type causer interface {
	Cause() error
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// stackTrace returns the first stack trace found in the wrapping chain.
func stackTrace(err error) errors.StackTrace {
	for {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}
		c, ok := err.(causer)
		if !ok {
			return nil
		}
		err = c.Cause()
	}
}
