package service

import (
	"context"

	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain"
)

// TxManager runs fn inside one store transaction. Repositories called with
// the ctx handed to fn take part in it.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type ActivityRepository interface {
	Create(ctx context.Context, entry *domain.ActivityEntry) error
	Recent(ctx context.Context, limit int) ([]*domain.ActivityEntry, error)
}

type Counter interface {
	Count(ctx context.Context) (int64, error)
}
