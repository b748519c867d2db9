package service

import (
	"context"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/calendar"
)

// BookingValidator checks a proposed booking against the doctor's existing
// appointments. It only reads from the store.
type BookingValidator struct {
	appointments appointment.Repository
}

func NewBookingValidator(appointments appointment.Repository) *BookingValidator {
	return &BookingValidator{appointments: appointments}
}

// ValidateAndPrepare parses cmd and returns the unsaved appointment it
// describes. Malformed dates or times fail with an error wrapping
// calendar.ErrFormat, an interval that does not end after it starts with
// appointment.ErrEmptyInterval, and an overlap with any of the doctor's
// appointments that day with appointment.ErrAppointmentConflict.
func (v *BookingValidator) ValidateAndPrepare(ctx context.Context, cmd *appointment.ScheduleAppointmentCommand) (*appointment.Appointment, error) {
	a, err := v.Prepare(cmd)
	if err != nil {
		return nil, err
	}
	if err := v.CheckConflict(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Prepare performs the checks that need no store access: date and time
// format, and a non-empty interval.
func (v *BookingValidator) Prepare(cmd *appointment.ScheduleAppointmentCommand) (*appointment.Appointment, error) {
	date, err := calendar.ParseDate(cmd.Date)
	if err != nil {
		return nil, fmt.Errorf("parsing appointment date: %w", err)
	}
	slot, err := calendar.ParseInterval(cmd.StartTime, cmd.EndTime)
	if err != nil {
		return nil, fmt.Errorf("parsing appointment time: %w", err)
	}
	if slot.Empty() {
		return nil, fmt.Errorf("%w: %s", appointment.ErrEmptyInterval, slot)
	}

	return &appointment.Appointment{
		PatientID: cmd.PatientID,
		DoctorID:  cmd.DoctorID,
		Date:      date,
		StartTime: slot.Start,
		EndTime:   slot.End,
		Notes:     cmd.Notes,
	}, nil
}

// CheckConflict fails with appointment.ErrAppointmentConflict when a overlaps
// any appointment its doctor already has that day.
func (v *BookingValidator) CheckConflict(ctx context.Context, a *appointment.Appointment) error {
	existing, err := v.appointments.ListByDoctorOnDate(ctx, a.DoctorID, a.Date)
	if err != nil {
		return fmt.Errorf("loading doctor schedule: %w", err)
	}
	slot := a.Interval()
	for _, b := range existing {
		if slot.Overlaps(b.Interval()) {
			return fmt.Errorf("%w: %s overlaps appointment %d (%s) on %s",
				appointment.ErrAppointmentConflict, slot, b.ID, b.Interval(), a.Date)
		}
	}
	return nil
}
