package storage

import (
	"errors"
	"strconv"
)

// ErrEmptySteps is returned by Put when there is nothing to store.
var ErrEmptySteps = errors.New("execution has no steps")

// NotFoundError is returned when an execution doesn't exist in the store.
type NotFoundError struct {
	ID int64
}

func (e NotFoundError) Error() string {
	if e.ID == 0 {
		return "execution not found"
	}

	return "execution not found: " + strconv.FormatInt(e.ID, 10)
}
