package doctor

import "context"

type Repository interface {
	Create(ctx context.Context, d *Doctor) error

	// GetByID returns ErrDoctorNotFound if no such doctor exists.
	GetByID(ctx context.Context, id int64) (*Doctor, error)

	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id int64) (bool, error)

	// List returns doctors ordered by name.
	List(ctx context.Context, q *ListDoctorsQuery) ([]*Doctor, error)

	Exists(ctx context.Context, id int64) (bool, error)

	// Lock takes a row lock on the doctor for the rest of the surrounding
	// transaction. Returns ErrDoctorNotFound if the row is missing.
	Lock(ctx context.Context, id int64) error

	Count(ctx context.Context) (int64, error)
}
