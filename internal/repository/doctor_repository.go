package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/doctor"
)

type DoctorRepository struct {
	store *Store
}

var _ doctor.Repository = (*DoctorRepository)(nil)

func NewDoctorRepository(store *Store) *DoctorRepository {
	return &DoctorRepository{store: store}
}

func (r *DoctorRepository) Create(ctx context.Context, d *doctor.Doctor) error {
	if err := r.store.conn(ctx).Create(d).Error; err != nil {
		return domain.StoreError("creating doctor", err)
	}
	return nil
}

func (r *DoctorRepository) GetByID(ctx context.Context, id int64) (*doctor.Doctor, error) {
	var d doctor.Doctor
	err := r.store.conn(ctx).First(&d, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, doctor.ErrDoctorNotFound
	}
	if err != nil {
		return nil, domain.StoreError("fetching doctor", err)
	}
	return &d, nil
}

func (r *DoctorRepository) Update(ctx context.Context, d *doctor.Doctor) error {
	res := r.store.conn(ctx).Model(&doctor.Doctor{}).Where("id = ?", d.ID).Updates(map[string]any{
		"name":           d.Name,
		"specialization": d.Specialization,
		"experience":     d.Experience,
		"gender":         d.Gender,
	})
	if res.Error != nil {
		return domain.StoreError("updating doctor", res.Error)
	}
	if res.RowsAffected == 0 {
		return doctor.ErrDoctorNotFound
	}
	return nil
}

func (r *DoctorRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.store.conn(ctx).Delete(&doctor.Doctor{}, id)
	if res.Error != nil {
		return false, domain.StoreError("deleting doctor", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *DoctorRepository) List(ctx context.Context, q *doctor.ListDoctorsQuery) ([]*doctor.Doctor, error) {
	db := r.store.conn(ctx).Model(&doctor.Doctor{})

	if term := strings.TrimSpace(q.Search); term != "" {
		if q.ByID {
			id, ok := searchID(term)
			if !ok {
				return []*doctor.Doctor{}, nil
			}
			db = db.Where("id = ?", id)
		} else {
			pattern := containsPattern(term)
			db = db.Where("LOWER(name) LIKE ?"+likeEscape+" OR LOWER(specialization) LIKE ?"+likeEscape, pattern, pattern)
		}
	}

	doctors := []*doctor.Doctor{}
	if err := db.Order("name ASC").Order("id ASC").Find(&doctors).Error; err != nil {
		return nil, domain.StoreError("listing doctors", err)
	}
	return doctors, nil
}

func (r *DoctorRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var n int64
	if err := r.store.conn(ctx).Model(&doctor.Doctor{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, domain.StoreError("checking doctor", err)
	}
	return n > 0, nil
}

// Lock selects the doctor row FOR UPDATE. SQLite has no row locks; there the
// store's write mutex already serializes transactions.
func (r *DoctorRepository) Lock(ctx context.Context, id int64) error {
	db := r.store.conn(ctx)
	if db.Name() == "postgres" {
		db = db.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}

	var d doctor.Doctor
	err := db.Select("id").First(&d, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return doctor.ErrDoctorNotFound
	}
	if err != nil {
		return domain.StoreError("locking doctor", err)
	}
	return nil
}

func (r *DoctorRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.store.conn(ctx).Model(&doctor.Doctor{}).Count(&n).Error; err != nil {
		return 0, domain.StoreError("counting doctors", err)
	}
	return n, nil
}
