package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/calendar"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/pkg/metrics"
)

type PatientService struct {
	tx           TxManager
	repo         patient.Repository
	appointments appointment.Repository
	onDelete     domain.DeletePolicy
	activity     *ActivityService
	metrics      *metrics.Collector
	log          *zap.Logger
	now          func() time.Time
}

func NewPatientService(
	tx TxManager,
	repo patient.Repository,
	appointments appointment.Repository,
	onDelete domain.DeletePolicy,
	activity *ActivityService,
	m *metrics.Collector,
	log *zap.Logger,
) *PatientService {
	return &PatientService{
		tx:           tx,
		repo:         repo,
		appointments: appointments,
		onDelete:     onDelete,
		activity:     activity,
		metrics:      m,
		log:          log,
		now:          time.Now,
	}
}

func (s *PatientService) CreatePatient(ctx context.Context, cmd *patient.CreatePatientCommand) (*patient.Patient, error) {
	cmd.Name = strings.TrimSpace(cmd.Name)
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}

	admitted := calendar.DateOf(s.now())
	if strings.TrimSpace(cmd.AdmissionDate) != "" {
		d, err := calendar.ParseDate(cmd.AdmissionDate)
		if err != nil {
			return nil, fmt.Errorf("parsing admission date: %w", err)
		}
		admitted = d
	}

	p := &patient.Patient{
		Name:          cmd.Name,
		Age:           cmd.Age,
		Gender:        cmd.Gender,
		Diagnosis:     strings.TrimSpace(cmd.Diagnosis),
		AdmissionDate: admitted,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.log.Error("failed to create patient", zap.Error(err))
		return nil, fmt.Errorf("creating patient: %w", err)
	}

	s.metrics.PatientsCreatedTotal.Inc()
	s.activity.Record(domain.KindPatient, domain.ActionCreate, p.ID, "New patient: "+p.Name)
	s.log.Info("patient created", zap.Int64("patient_id", p.ID))

	return p, nil
}

func (s *PatientService) GetPatient(ctx context.Context, id int64) (*patient.Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PatientService) UpdatePatient(ctx context.Context, id int64, cmd *patient.UpdatePatientCommand) (*patient.Patient, error) {
	cmd.Name = strings.TrimSpace(cmd.Name)
	cmd.Diagnosis = strings.TrimSpace(cmd.Diagnosis)
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}

	var updated *patient.Patient
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		p.Apply(cmd)
		if err := s.repo.Update(ctx, p); err != nil {
			return fmt.Errorf("updating patient: %w", err)
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(domain.KindPatient, domain.ActionUpdate, id, "Updated patient: "+updated.Name)
	return updated, nil
}

// DeletePatient removes the patient and reports whether it existed. Under the
// cascade policy the patient's appointments go with it; otherwise they are
// kept and keep referring to the deleted patient.
func (s *PatientService) DeletePatient(ctx context.Context, id int64) (bool, error) {
	var removed int64
	var deleted bool
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		deleted, err = s.repo.Delete(ctx, id)
		if err != nil {
			return fmt.Errorf("deleting patient: %w", err)
		}
		if !deleted || s.onDelete != domain.DeleteCascade {
			return nil
		}
		removed, err = s.appointments.DeleteByPatient(ctx, id)
		if err != nil {
			return fmt.Errorf("deleting patient appointments: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if !deleted {
		return false, nil
	}

	s.activity.Record(domain.KindPatient, domain.ActionDelete, id, fmt.Sprintf("Patient #%d deleted", id))
	s.log.Info("patient deleted",
		zap.Int64("patient_id", id),
		zap.String("policy", string(s.onDelete)),
		zap.Int64("appointments_removed", removed),
	)
	return true, nil
}

func (s *PatientService) ListPatients(ctx context.Context, q *patient.ListPatientsQuery) ([]*patient.Patient, error) {
	return s.repo.List(ctx, q)
}
