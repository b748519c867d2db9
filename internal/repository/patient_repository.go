package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/patient"
)

type PatientRepository struct {
	store *Store
}

var _ patient.Repository = (*PatientRepository)(nil)

func NewPatientRepository(store *Store) *PatientRepository {
	return &PatientRepository{store: store}
}

func (r *PatientRepository) Create(ctx context.Context, p *patient.Patient) error {
	if err := r.store.conn(ctx).Create(p).Error; err != nil {
		return domain.StoreError("creating patient", err)
	}
	return nil
}

func (r *PatientRepository) GetByID(ctx context.Context, id int64) (*patient.Patient, error) {
	var p patient.Patient
	err := r.store.conn(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, patient.ErrPatientNotFound
	}
	if err != nil {
		return nil, domain.StoreError("fetching patient", err)
	}
	return &p, nil
}

func (r *PatientRepository) Update(ctx context.Context, p *patient.Patient) error {
	res := r.store.conn(ctx).Model(&patient.Patient{}).Where("id = ?", p.ID).Updates(map[string]any{
		"name":      p.Name,
		"age":       p.Age,
		"gender":    p.Gender,
		"diagnosis": p.Diagnosis,
	})
	if res.Error != nil {
		return domain.StoreError("updating patient", res.Error)
	}
	if res.RowsAffected == 0 {
		return patient.ErrPatientNotFound
	}
	return nil
}

func (r *PatientRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.store.conn(ctx).Delete(&patient.Patient{}, id)
	if res.Error != nil {
		return false, domain.StoreError("deleting patient", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *PatientRepository) List(ctx context.Context, q *patient.ListPatientsQuery) ([]*patient.Patient, error) {
	db := r.store.conn(ctx).Model(&patient.Patient{})

	if term := strings.TrimSpace(q.Search); term != "" {
		if q.ByID {
			id, ok := searchID(term)
			if !ok {
				return []*patient.Patient{}, nil
			}
			db = db.Where("id = ?", id)
		} else {
			pattern := containsPattern(term)
			db = db.Where("LOWER(name) LIKE ?"+likeEscape+" OR LOWER(diagnosis) LIKE ?"+likeEscape, pattern, pattern)
		}
	}

	patients := []*patient.Patient{}
	if err := db.Order("name ASC").Order("id ASC").Find(&patients).Error; err != nil {
		return nil, domain.StoreError("listing patients", err)
	}
	return patients, nil
}

func (r *PatientRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var n int64
	if err := r.store.conn(ctx).Model(&patient.Patient{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, domain.StoreError("checking patient", err)
	}
	return n > 0, nil
}

func (r *PatientRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.store.conn(ctx).Model(&patient.Patient{}).Count(&n).Error; err != nil {
		return 0, domain.StoreError("counting patients", err)
	}
	return n, nil
}
