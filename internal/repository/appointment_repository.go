package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/calendar"
)

type AppointmentRepository struct {
	store *Store
}

var _ appointment.Repository = (*AppointmentRepository)(nil)

func NewAppointmentRepository(store *Store) *AppointmentRepository {
	return &AppointmentRepository{store: store}
}

func (r *AppointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	err := r.store.conn(ctx).Create(a).Error
	if isExclusionViolation(err) {
		return appointment.ErrAppointmentConflict
	}
	if err != nil {
		return domain.StoreError("creating appointment", err)
	}
	return nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.store.conn(ctx).Delete(&appointment.Appointment{}, id)
	if res.Error != nil {
		return false, domain.StoreError("deleting appointment", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// listings selects appointments with the names of the people they reference.
// The joins are outer because references may dangle.
func (r *AppointmentRepository) listings(ctx context.Context) *gorm.DB {
	return r.store.conn(ctx).
		Table("appointments AS a").
		Select(`a.*,
			COALESCE(p.name, '') AS patient_name,
			COALESCE(d.name, '') AS doctor_name,
			COALESCE(d.specialization, '') AS doctor_specialization`).
		Joins("LEFT JOIN patients p ON p.id = a.patient_id").
		Joins("LEFT JOIN doctors d ON d.id = a.doctor_id")
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id int64) (*appointment.Listing, error) {
	var l appointment.Listing
	err := r.listings(ctx).Where("a.id = ?", id).Take(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appointment.ErrAppointmentNotFound
	}
	if err != nil {
		return nil, domain.StoreError("fetching appointment", err)
	}
	return &l, nil
}

func (r *AppointmentRepository) List(ctx context.Context, q *appointment.ListAppointmentsQuery) ([]*appointment.Listing, error) {
	db := r.listings(ctx)

	if q.DoctorID != 0 {
		db = db.Where("a.doctor_id = ?", q.DoctorID)
	}
	if q.PatientID != 0 {
		db = db.Where("a.patient_id = ?", q.PatientID)
	}
	if q.Date != nil {
		db = db.Where("a.appointment_date = ?", *q.Date)
	}

	if term := strings.TrimSpace(q.Search); term != "" {
		if q.ByID {
			id, ok := searchID(term)
			if !ok {
				return []*appointment.Listing{}, nil
			}
			db = db.Where("a.id = ?", id)
		} else {
			pattern := containsPattern(term)
			db = db.Where(
				"LOWER(p.name) LIKE ?"+likeEscape+" OR LOWER(d.name) LIKE ?"+likeEscape+" OR LOWER(a.notes) LIKE ?"+likeEscape,
				pattern, pattern, pattern,
			)
		}
	}

	listings := []*appointment.Listing{}
	err := db.Order("a.appointment_date ASC").Order("a.start_time ASC").Order("a.id ASC").Find(&listings).Error
	if err != nil {
		return nil, domain.StoreError("listing appointments", err)
	}
	return listings, nil
}

func (r *AppointmentRepository) ListByDoctorOnDate(ctx context.Context, doctorID int64, date calendar.Date) ([]*appointment.Appointment, error) {
	appts := []*appointment.Appointment{}
	err := r.store.conn(ctx).
		Where("doctor_id = ? AND appointment_date = ?", doctorID, date).
		Order("start_time ASC").
		Find(&appts).Error
	if err != nil {
		return nil, domain.StoreError("listing doctor appointments", err)
	}
	return appts, nil
}

func (r *AppointmentRepository) DeleteByPatient(ctx context.Context, patientID int64) (int64, error) {
	res := r.store.conn(ctx).Where("patient_id = ?", patientID).Delete(&appointment.Appointment{})
	if res.Error != nil {
		return 0, domain.StoreError("deleting patient appointments", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *AppointmentRepository) DeleteByDoctor(ctx context.Context, doctorID int64) (int64, error) {
	res := r.store.conn(ctx).Where("doctor_id = ?", doctorID).Delete(&appointment.Appointment{})
	if res.Error != nil {
		return 0, domain.StoreError("deleting doctor appointments", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *AppointmentRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.store.conn(ctx).Model(&appointment.Appointment{}).Count(&n).Error; err != nil {
		return 0, domain.StoreError("counting appointments", err)
	}
	return n, nil
}
