package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/pkg/metrics"
)

type DoctorService struct {
	tx           TxManager
	repo         doctor.Repository
	appointments appointment.Repository
	onDelete     domain.DeletePolicy
	activity     *ActivityService
	metrics      *metrics.Collector
	log          *zap.Logger
}

func NewDoctorService(
	tx TxManager,
	repo doctor.Repository,
	appointments appointment.Repository,
	onDelete domain.DeletePolicy,
	activity *ActivityService,
	m *metrics.Collector,
	log *zap.Logger,
) *DoctorService {
	return &DoctorService{
		tx:           tx,
		repo:         repo,
		appointments: appointments,
		onDelete:     onDelete,
		activity:     activity,
		metrics:      m,
		log:          log,
	}
}

func (s *DoctorService) CreateDoctor(ctx context.Context, cmd *doctor.CreateDoctorCommand) (*doctor.Doctor, error) {
	cmd.Name = strings.TrimSpace(cmd.Name)
	cmd.Specialization = strings.TrimSpace(cmd.Specialization)
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}

	d := &doctor.Doctor{
		Name:           cmd.Name,
		Specialization: cmd.Specialization,
		Experience:     cmd.Experience,
		Gender:         cmd.Gender,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		s.log.Error("failed to create doctor", zap.Error(err))
		return nil, fmt.Errorf("creating doctor: %w", err)
	}

	s.metrics.DoctorsCreatedTotal.Inc()
	s.activity.Record(domain.KindDoctor, domain.ActionCreate, d.ID, fmt.Sprintf("New doctor: %s (%s)", d.Name, d.Specialization))
	s.log.Info("doctor created", zap.Int64("doctor_id", d.ID))

	return d, nil
}

func (s *DoctorService) GetDoctor(ctx context.Context, id int64) (*doctor.Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *DoctorService) UpdateDoctor(ctx context.Context, id int64, cmd *doctor.UpdateDoctorCommand) (*doctor.Doctor, error) {
	cmd.Name = strings.TrimSpace(cmd.Name)
	cmd.Specialization = strings.TrimSpace(cmd.Specialization)
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}

	var updated *doctor.Doctor
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		d, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		d.Apply(cmd)
		if err := s.repo.Update(ctx, d); err != nil {
			return fmt.Errorf("updating doctor: %w", err)
		}
		updated = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(domain.KindDoctor, domain.ActionUpdate, id, "Updated doctor: "+updated.Name)
	return updated, nil
}

// DeleteDoctor removes the doctor and reports whether it existed. The
// doctor's appointments are removed too under the cascade policy.
func (s *DoctorService) DeleteDoctor(ctx context.Context, id int64) (bool, error) {
	var removed int64
	var deleted bool
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		deleted, err = s.repo.Delete(ctx, id)
		if err != nil {
			return fmt.Errorf("deleting doctor: %w", err)
		}
		if !deleted || s.onDelete != domain.DeleteCascade {
			return nil
		}
		removed, err = s.appointments.DeleteByDoctor(ctx, id)
		if err != nil {
			return fmt.Errorf("deleting doctor appointments: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if !deleted {
		return false, nil
	}

	s.activity.Record(domain.KindDoctor, domain.ActionDelete, id, fmt.Sprintf("Doctor #%d deleted", id))
	s.log.Info("doctor deleted",
		zap.Int64("doctor_id", id),
		zap.String("policy", string(s.onDelete)),
		zap.Int64("appointments_removed", removed),
	)
	return true, nil
}

func (s *DoctorService) ListDoctors(ctx context.Context, q *doctor.ListDoctorsQuery) ([]*doctor.Doctor, error) {
	return s.repo.List(ctx, q)
}
