package mysql

import (
	"context"
	"errors"
	"time"

	loanDomain "p2plending/internal/domain/loan"
	"p2plending/internal/domain/storage"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct {
	db       *gorm.DB
	lifetime storage.Lifetime
}

func NewLoanRepository(db *gorm.DB, lt storage.Lifetime) *LoanRepository {
	return &LoanRepository{db: db, lifetime: lt}
}

func (r *LoanRepository) Exists(ctx context.Context, key uint64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&loanDomain.Loan{}).Where("loan_key = ?", key).Count(&n).Error
	return n > 0, err
}

func (r *LoanRepository) Get(ctx context.Context, key uint64) (*loanDomain.Loan, error) {
	return r.first(r.db.WithContext(ctx), key)
}

func (r *LoanRepository) GetForUpdate(ctx context.Context, key uint64) (*loanDomain.Loan, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), key)
}

func (r *LoanRepository) first(q *gorm.DB, key uint64) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	if err := q.Where("loan_key = ?", key).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loanDomain.ErrLoanNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	l.ExpiresAt = r.lifetime.Extend(time.Time{}, time.Now().UTC())
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	l.ExpiresAt = r.lifetime.Extend(l.ExpiresAt, time.Now().UTC())
	// Save cannot be used here: loan key 0 is a valid key and gorm treats a
	// zero primary key as an insert.
	return r.db.WithContext(ctx).Model(l).
		Where("loan_key = ?", l.LoanKey).
		Select("*").Omit("loan_key", "created_at").
		Updates(l).Error
}

func (r *LoanRepository) Delete(ctx context.Context, key uint64) error {
	return r.db.WithContext(ctx).Where("loan_key = ?", key).Delete(&loanDomain.Loan{}).Error
}
