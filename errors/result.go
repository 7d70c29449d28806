package errors

import (
	"fmt"
	"reflect"
)

const (
	// SuccessCode is the result code of an operation that did not fail.
	SuccessCode = 0

	// All errors that were not registered are reported under the internal
	// code with a generic message instead of the detailed error string.
	internalCode uint32 = 1
	internalLog         = "internal error"
)

// ResultInfo returns the numeric code and the log message that should be
// reported to a client for the given error. Any error that does not provide a
// code is categorized as an internal error with code 1.
//
// When not running in debug mode, the message of an internal error is
// replaced with a generic "internal error" text.
func ResultInfo(err error, debug bool) (uint32, string) {
	if errIsNil(err) {
		return SuccessCode, ""
	}

	if code := errCode(err); code != internalCode {
		if debug {
			return code, fmt.Sprintf("%+v", err)
		}
		return code, err.Error()
	}

	if debug {
		return internalCode, fmt.Sprintf("%+v", err)
	}
	return internalCode, internalLog
}

type coder interface {
	Code() uint32
}

// errCode unwraps given error until a registered code is found.
func errCode(err error) uint32 {
	if errIsNil(err) {
		return SuccessCode
	}

	for {
		if c, ok := err.(coder); ok {
			return c.Code()
		}
		c, ok := err.(causer)
		if !ok {
			return internalCode
		}
		err = c.Cause()
	}
}

// errIsNil returns true if value represented by the given error is nil,
// including typed nil pointers.
func errIsNil(err error) bool {
	if err == nil {
		return true
	}
	if val := reflect.ValueOf(err); val.Kind() == reflect.Ptr {
		return val.IsNil()
	}
	return false
}
