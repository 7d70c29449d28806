/*
Package errors implements the error handling used by all poolweave packages.

Reuse the root errors declared in this package whenever possible. An extension
that needs to report its own category of failure registers a custom root error
with Register(code, description) during initialization. The code is what a
client receives and uses to distinguish failures.

Create errors with ErrXyz.New("...") or errors.Wrap(err, "...") at the point
of failure so that a stack trace is attached. Only the innermost wrap records
the stack.

	%s is just the error message
	%+v is the message with the full stack trace

Use ErrXyz.Is(err) to test the root cause of any wrapped error.
*/
package errors
