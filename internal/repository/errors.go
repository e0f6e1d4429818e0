package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrAccountNotFound is returned when no account exists for the requested id.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountExists is returned when creating an account whose id is already taken.
	ErrAccountExists = errors.New("account already exists")
)

// StoreError reports a persistence failure. Callers decide whether to retry or abort.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
