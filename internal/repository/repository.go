package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrNotFound covers both a missing row and a row owned by someone
	// else; the two cases are deliberately indistinguishable so that
	// existence is never leaked to non-owners.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a unique constraint is violated
	ErrConflict = errors.New("duplicate record")
)

// Store implements owner-scoped CRUD for one entity type. The ownership
// column is checked on every read, update and delete; an ownership
// mismatch collapses into ErrNotFound.
type Store[T any] struct {
	db       *gorm.DB
	ownerCol string
}

// NewStore builds a store for entity type T whose ownership foreign key
// lives in the given column.
func NewStore[T any](db *gorm.DB, ownerCol string) *Store[T] {
	return &Store[T]{db: db, ownerCol: ownerCol}
}

// ListForOwner returns all rows whose ownership column matches ownerID.
// Ordering is unspecified.
func (s *Store[T]) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]T, error) {
	out := make([]T, 0)
	err := s.db.WithContext(ctx).Where(s.ownerCol+" = ?", ownerID).Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the row with the given id if it is owned by requesterID
func (s *Store[T]) Get(ctx context.Context, id, requesterID uuid.UUID) (*T, error) {
	var entity T
	err := s.db.WithContext(ctx).
		Where("id = ? AND "+s.ownerCol+" = ?", id, requesterID).
		First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// Create persists the entity. The store itself enforces uniqueness;
// a duplicated key surfaces as ErrConflict.
func (s *Store[T]) Create(ctx context.Context, entity *T) error {
	err := s.db.WithContext(ctx).Create(entity).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	return err
}

// Update applies a merge-patch: only the columns present in fields are
// overwritten, everything else is left untouched. An empty patch still
// returns the current row.
func (s *Store[T]) Update(ctx context.Context, id, requesterID uuid.UUID, fields map[string]interface{}) (*T, error) {
	entity, err := s.Get(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		return entity, nil
	}

	err = s.db.WithContext(ctx).Model(entity).Updates(fields).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id, requesterID)
}

// Delete removes the row if it is owned by requesterID
func (s *Store[T]) Delete(ctx context.Context, id, requesterID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND "+s.ownerCol+" = ?", id, requesterID).
		Delete(new(T))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
