package services

import (
	"errors"
	"math"
)

// ErrInvalidArgument matches every InvalidArgumentError.
var ErrInvalidArgument = errors.New("invalid argument")

var (
	ErrInvalidEventTypeID = &InvalidArgumentError{Message: "Invalid event type ID"}
	ErrInvalidLimit       = &InvalidArgumentError{Message: "Invalid limit parameter"}
)

// validExternalID reports whether a commission id fits the INTEGER id columns.
func validExternalID(id int) bool {
	return id > 0 && id <= math.MaxInt32
}

// InvalidArgumentError is a malformed request parameter. Message is safe to show to clients.
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return e.Message
}

func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}
