package misbehavior

import "github.com/pkg/errors"

// Error is a block rejection carrying the ban score the rejection added to
// the block's misbehavior score.
type Error struct {
	BanScore uint32
	Cause    error
}

func (e *Error) Error() string {
	return e.Cause.Error()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Errorf formats according to a format specifier and returns the string
// as a value that satisfies error.
// Errorf also records the stack trace at the point it was called.
func Errorf(banScore uint32, format string, args ...interface{}) error {
	return &Error{
		BanScore: banScore,
		Cause:    errors.Errorf(format, args...),
	}
}

// Wrapf returns an error annotating err with a stack trace
// at the point Wrapf is called, and the format specifier.
func Wrapf(banScore uint32, err error, format string, args ...interface{}) error {
	return &Error{
		BanScore: banScore,
		Cause:    errors.Wrapf(err, format, args...),
	}
}

// BanScoreOf returns the ban score carried by err, or zero if err is not a
// misbehavior error.
func BanScoreOf(err error) uint32 {
	var misbehaviorErr *Error
	if errors.As(err, &misbehaviorErr) {
		return misbehaviorErr.BanScore
	}
	return 0
}
