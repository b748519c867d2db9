package service

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/calendar"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/pkg/metrics"
)

// AppointmentService is the entry point for booking, cancelling and listing
// appointments.
type AppointmentService struct {
	tx           TxManager
	repo         appointment.Repository
	patientRepo  patient.Repository
	doctorRepo   doctor.Repository
	validator    *BookingValidator
	availability *AvailabilityService
	activity     *ActivityService
	metrics      *metrics.Collector
	log          *zap.Logger
}

func NewAppointmentService(
	tx TxManager,
	repo appointment.Repository,
	patientRepo patient.Repository,
	doctorRepo doctor.Repository,
	availability *AvailabilityService,
	activity *ActivityService,
	m *metrics.Collector,
	log *zap.Logger,
) *AppointmentService {
	return &AppointmentService{
		tx:           tx,
		repo:         repo,
		patientRepo:  patientRepo,
		doctorRepo:   doctorRepo,
		validator:    NewBookingValidator(repo),
		availability: availability,
		activity:     activity,
		metrics:      m,
		log:          log,
	}
}

// ScheduleAppointment validates and books cmd in a single transaction, so no
// other booking can slip in between the overlap check and the insert. Errors
// come in the order format, doctor, conflict, patient.
func (s *AppointmentService) ScheduleAppointment(ctx context.Context, cmd *appointment.ScheduleAppointmentCommand) (*appointment.Appointment, error) {
	ctx, span := tracer.Start(ctx, "AppointmentService.ScheduleAppointment")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("doctor.id", cmd.DoctorID),
		attribute.Int64("patient.id", cmd.PatientID),
		attribute.String("date", cmd.Date),
	)

	var booked *appointment.Appointment
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		a, err := s.validator.Prepare(cmd)
		if err != nil {
			return err
		}

		// The doctor's schedule is read only while holding its row lock.
		if err := s.doctorRepo.Lock(ctx, cmd.DoctorID); err != nil {
			return fmt.Errorf("verifying doctor: %w", err)
		}
		if err := s.validator.CheckConflict(ctx, a); err != nil {
			return err
		}
		ok, err := s.patientRepo.Exists(ctx, cmd.PatientID)
		if err != nil {
			return fmt.Errorf("verifying patient: %w", err)
		}
		if !ok {
			return fmt.Errorf("verifying patient: %w", patient.ErrPatientNotFound)
		}

		if err := s.repo.Create(ctx, a); err != nil {
			return fmt.Errorf("creating appointment: %w", err)
		}
		booked = a
		return nil
	})
	if err != nil {
		s.recordRejection(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "booking rejected")
		return nil, err
	}

	s.metrics.AppointmentsTotal.WithLabelValues(metrics.OutcomeBooked).Inc()
	s.activity.Record(domain.KindAppointment, domain.ActionCreate, booked.ID,
		fmt.Sprintf("Appointment booked for %s %s", booked.Date, booked.Interval()))
	s.log.Info("appointment scheduled",
		zap.Int64("appointment_id", booked.ID),
		zap.Int64("doctor_id", booked.DoctorID),
		zap.Int64("patient_id", booked.PatientID),
		zap.String("date", booked.Date.String()),
		zap.String("slot", booked.Interval().String()),
	)

	return booked, nil
}

func (s *AppointmentService) recordRejection(err error) {
	switch {
	case errors.Is(err, appointment.ErrAppointmentConflict):
		s.metrics.AppointmentsTotal.WithLabelValues(metrics.OutcomeConflict).Inc()
		s.log.Info("appointment conflict", zap.Error(err))
	case errors.Is(err, domain.ErrStore):
		s.log.Error("failed to schedule appointment", zap.Error(err))
	default:
		s.metrics.AppointmentsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
	}
}

// CancelAppointment deletes the appointment and reports whether it existed.
func (s *AppointmentService) CancelAppointment(ctx context.Context, id int64) (bool, error) {
	ctx, span := tracer.Start(ctx, "AppointmentService.CancelAppointment")
	defer span.End()

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("cancelling appointment: %w", err)
	}
	if !deleted {
		return false, nil
	}

	s.metrics.AppointmentsTotal.WithLabelValues(metrics.OutcomeCancelled).Inc()
	s.activity.Record(domain.KindAppointment, domain.ActionCancel, id, fmt.Sprintf("Appointment #%d cancelled", id))
	s.log.Info("appointment cancelled", zap.Int64("appointment_id", id))
	return true, nil
}

func (s *AppointmentService) GetAppointment(ctx context.Context, id int64) (*appointment.Listing, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AppointmentService) ListAppointments(ctx context.Context, q *appointment.ListAppointmentsQuery) ([]*appointment.Listing, error) {
	return s.repo.List(ctx, q)
}

// ListForDoctorOnDate returns the doctor's appointments on date ordered by
// start time.
func (s *AppointmentService) ListForDoctorOnDate(ctx context.Context, doctorID int64, date string) ([]*appointment.Appointment, error) {
	day, err := calendar.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("parsing date: %w", err)
	}
	return s.repo.ListByDoctorOnDate(ctx, doctorID, day)
}

// PatientAppointments returns every appointment of an existing patient.
func (s *AppointmentService) PatientAppointments(ctx context.Context, patientID int64) ([]*appointment.Listing, error) {
	ok, err := s.patientRepo.Exists(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("verifying patient: %w", err)
	}
	if !ok {
		return nil, patient.ErrPatientNotFound
	}
	return s.repo.List(ctx, &appointment.ListAppointmentsQuery{PatientID: patientID})
}

// FreeSlots delegates to the availability engine.
func (s *AppointmentService) FreeSlots(ctx context.Context, doctorID int64, date string, durationMinutes int) ([]calendar.Interval, error) {
	return s.availability.FreeSlots(ctx, doctorID, date, durationMinutes)
}
