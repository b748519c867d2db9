package appointment

import "errors"

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrAppointmentConflict = errors.New("appointment time slot is already booked")
	ErrEmptyInterval       = errors.New("appointment must end after it starts")
)
