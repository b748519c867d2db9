package calendar

import (
	"errors"
	"fmt"
)

// ErrFormat is the parent of every malformed date/time error.
var ErrFormat = errors.New("malformed date or time")

var (
	ErrInvalidDate       = fmt.Errorf("%w: date must be YYYY-MM-DD", ErrFormat)
	ErrInvalidClock      = fmt.Errorf("%w: time must be HH:MM (24-hour)", ErrFormat)
	ErrInvalidSlotLength = errors.New("slot length must be a positive number of minutes")
)
