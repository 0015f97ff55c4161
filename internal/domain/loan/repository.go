package loan

import "context"

type Repository interface {
	Exists(ctx context.Context, key uint64) (bool, error)
	// Get and GetForUpdate return ErrLoanNotFound when no record exists.
	Get(ctx context.Context, key uint64) (*Loan, error)
	GetForUpdate(ctx context.Context, key uint64) (*Loan, error)
	Create(ctx context.Context, l *Loan) error
	Save(ctx context.Context, l *Loan) error
	Delete(ctx context.Context, key uint64) error
}

// IndexRepository keeps the per-user list of open loan keys.
type IndexRepository interface {
	// Add is idempotent; new keys go to the front of the list.
	Add(ctx context.Context, user string, key uint64) error
	// Remove is a no-op when the key is not listed.
	Remove(ctx context.Context, user string, key uint64) error
	List(ctx context.Context, user string) ([]uint64, error)
}
