package app

import "fmt"

// constError is an error type that can be declared as a constant.
type constError string

func (e constError) Error() string { return string(e) }

// ErrQuit signals that the user or a script requested a clean exit.
const ErrQuit = constError("quit requested")

// InitError reports a component that failed during engine startup.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("initializing %s: %v", e.Component, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}
