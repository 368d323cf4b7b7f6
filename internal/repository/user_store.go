package repository

import (
	"context"
	"errors"

	"teampulse-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserStore handles user rows. Users are not owner-scoped: any
// authenticated principal may list and read them, which is why this
// store does not embed the generic owner-checked Store.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// List returns all users
func (s *UserStore) List(ctx context.Context) ([]model.User, error) {
	out := make([]model.User, 0)
	err := s.db.WithContext(ctx).Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns the user with the given id
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail returns the user with the given email
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create persists a new user. The unique index on email is enforced by
// the store; a duplicate surfaces as ErrConflict rather than being
// pre-checked, so concurrent registrations cannot race past each other.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	err := s.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	return err
}

// Update applies a merge-patch to the user row
func (s *UserStore) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		return user, nil
	}

	err = s.db.WithContext(ctx).Model(user).Updates(fields).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// Delete removes the user row
func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
