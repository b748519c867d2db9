package repository

import (
	"context"

	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain"
)

type ActivityRepository struct {
	store *Store
}

func NewActivityRepository(store *Store) *ActivityRepository {
	return &ActivityRepository{store: store}
}

func (r *ActivityRepository) Create(ctx context.Context, e *domain.ActivityEntry) error {
	if err := r.store.conn(ctx).Create(e).Error; err != nil {
		return domain.StoreError("writing activity entry", err)
	}
	return nil
}

// Recent returns at most limit entries, newest first.
func (r *ActivityRepository) Recent(ctx context.Context, limit int) ([]*domain.ActivityEntry, error) {
	entries := []*domain.ActivityEntry{}
	err := r.store.conn(ctx).
		Order("occurred_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, domain.StoreError("listing activity", err)
	}
	return entries, nil
}
