package appointment

import (
	"context"

	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/calendar"
)

type Repository interface {
	// Create returns ErrAppointmentConflict if the store itself rejects an
	// overlapping row.
	Create(ctx context.Context, a *Appointment) error

	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id int64) (bool, error)

	// GetByID returns ErrAppointmentNotFound if no such appointment exists.
	GetByID(ctx context.Context, id int64) (*Listing, error)

	// List returns listings ordered by date then start time.
	List(ctx context.Context, q *ListAppointmentsQuery) ([]*Listing, error)

	// ListByDoctorOnDate returns the doctor's appointments on date ordered by start time.
	ListByDoctorOnDate(ctx context.Context, doctorID int64, date calendar.Date) ([]*Appointment, error)

	DeleteByPatient(ctx context.Context, patientID int64) (int64, error)
	DeleteByDoctor(ctx context.Context, doctorID int64) (int64, error)
	Count(ctx context.Context) (int64, error)
}
