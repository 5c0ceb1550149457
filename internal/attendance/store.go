package attendance

import (
	"context"
	"errors"

	"github.com/VeriTime/VT-Backend/internal/db"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Store is the persistence boundary of the transaction handler. Production
// uses the gorm-backed implementation below; tests substitute an in-memory
// one behind the same interface so no test state leaks process-wide.
type Store interface {
	// FindForDate returns the day's record for a person, or nil when none exists.
	FindForDate(ctx context.Context, personID uuid.UUID, date string) (*Record, error)
	Insert(ctx context.Context, rec *Record) error
	Update(ctx context.Context, rec *Record) error
	// ListByDate returns all records of one calendar date.
	ListByDate(ctx context.Context, date string) ([]Record, error)
	// ListRange returns records with date in [start, end], ordered by date.
	ListRange(ctx context.Context, start, end string) ([]Record, error)
}

type gormStore struct{}

// NewStore returns the production Store backed by the shared gorm handle.
func NewStore() Store { return gormStore{} }

func (gormStore) FindForDate(ctx context.Context, personID uuid.UUID, date string) (*Record, error) {
	var rec Record
	err := db.DB.WithContext(ctx).
		First(&rec, "person_id = ? AND date = ?", personID, date).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec.Persisted = true
	return &rec, nil
}

func (gormStore) Insert(ctx context.Context, rec *Record) error {
	return db.DB.WithContext(ctx).Create(rec).Error
}

func (gormStore) Update(ctx context.Context, rec *Record) error {
	return db.DB.WithContext(ctx).Save(rec).Error
}

func (gormStore) ListByDate(ctx context.Context, date string) ([]Record, error) {
	var recs []Record
	err := db.DB.WithContext(ctx).
		Where("date = ?", date).
		Order("check_in_time DESC NULLS LAST").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	for i := range recs {
		recs[i].Persisted = true
	}
	return recs, nil
}

func (gormStore) ListRange(ctx context.Context, start, end string) ([]Record, error) {
	var recs []Record
	err := db.DB.WithContext(ctx).
		Where("date >= ? AND date <= ?", start, end).
		Order("date ASC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	for i := range recs {
		recs[i].Persisted = true
	}
	return recs, nil
}

// IsUniqueViolation reports whether an insert tripped the (person, date)
// unique index — i.e. a concurrent or repeated check-in for the same day.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsStructural reports storage problems that are about the store itself
// (missing relation or column, dead handle) rather than this row. These are
// the only failures eligible for the degraded write path.
func IsStructural(err error) bool {
	if errors.Is(err, gorm.ErrInvalidDB) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "42P01" || pgErr.Code == "42703" // undefined_table, undefined_column
	}
	return false
}
