package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/calendar"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/pkg/metrics"
)

var tracer = otel.Tracer("github.com/dmehra2102/prod-golang-projects/clinicsched/internal/service")

// AvailabilityService computes a doctor's free slots within the clinic's
// working hours. Nothing is cached; every call reads the current schedule.
type AvailabilityService struct {
	appointments appointment.Repository
	workday      calendar.Interval
	defaultSlot  int
	metrics      *metrics.Collector
	log          *zap.Logger
}

func NewAvailabilityService(
	appointments appointment.Repository,
	workday calendar.Interval,
	defaultSlotMinutes int,
	m *metrics.Collector,
	log *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		appointments: appointments,
		workday:      workday,
		defaultSlot:  defaultSlotMinutes,
		metrics:      m,
		log:          log,
	}
}

func (s *AvailabilityService) Workday() calendar.Interval {
	return s.workday
}

// DefaultSlotMinutes is the slot length callers should use when the client
// did not ask for one.
func (s *AvailabilityService) DefaultSlotMinutes() int {
	return s.defaultSlot
}

// FreeSlots returns the slots of durationMinutes on date during which the
// doctor has no appointment, in chronological order.
func (s *AvailabilityService) FreeSlots(ctx context.Context, doctorID int64, date string, durationMinutes int) ([]calendar.Interval, error) {
	ctx, span := tracer.Start(ctx, "AvailabilityService.FreeSlots")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("doctor.id", doctorID),
		attribute.String("date", date),
		attribute.Int("slot.minutes", durationMinutes),
	)

	day, err := calendar.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("parsing slot date: %w", err)
	}
	if durationMinutes <= 0 {
		return nil, calendar.ErrInvalidSlotLength
	}

	existing, err := s.appointments.ListByDoctorOnDate(ctx, doctorID, day)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("loading doctor schedule: %w", err)
	}

	booked := make([]calendar.Interval, 0, len(existing))
	for _, a := range existing {
		booked = append(booked, a.Interval())
	}

	free, err := calendar.FreeSlots(s.workday, booked, durationMinutes)
	if err != nil {
		return nil, err
	}

	s.metrics.SlotQueriesTotal.Inc()
	s.metrics.FreeSlotsReturned.Observe(float64(len(free)))
	s.log.Debug("computed free slots",
		zap.Int64("doctor_id", doctorID),
		zap.String("date", day.String()),
		zap.Int("booked", len(booked)),
		zap.Int("free", len(free)),
	)

	return free, nil
}
