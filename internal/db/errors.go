package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Joseda-hg/kitchencheck/internal/checklist"
)

var (
	ErrInvalidTask = errors.New("invalid task")
	ErrInvalidUser = errors.New("invalid user")
	ErrEmailTaken  = errors.New("email already registered")
)

// OpError records which store operation failed and on what.
type OpError struct {
	Op       string
	Resource string
	ID       string
	Err      error
}

func (e *OpError) Error() string {
	if e == nil {
		return ""
	}
	if e.ID != "" {
		return fmt.Sprintf("%s %s %s: %v", e.Op, e.Resource, e.ID, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Resource, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

func wrapTaskErr(op, id string, err error) error {
	return wrapErr(op, "task", id, err)
}

func wrapRecordErr(op, id string, err error) error {
	return wrapErr(op, "record", id, err)
}

func wrapUserErr(op, id string, err error) error {
	return wrapErr(op, "user", id, err)
}

func wrapErr(op, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		err = checklist.ErrNotFound
	}
	return &OpError{Op: op, Resource: resource, ID: id, Err: err}
}
