package patient

import "context"

type Repository interface {
	// Create persists a new patient and assigns its ID.
	Create(ctx context.Context, p *Patient) error

	// GetByID returns ErrPatientNotFound if no such patient exists.
	GetByID(ctx context.Context, id int64) (*Patient, error)

	// Update overwrites the mutable fields. Returns ErrPatientNotFound if the row is gone.
	Update(ctx context.Context, p *Patient) error

	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id int64) (bool, error)

	// List returns patients ordered by name.
	List(ctx context.Context, q *ListPatientsQuery) ([]*Patient, error)

	Exists(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int64, error)
}
