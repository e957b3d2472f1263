package repository

import (
	"context"

	"arcadeorders/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository covers both admins and clients. Balance is deliberately
// absent from every write here: it is only changed by LedgerRepository.
type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.User, error)
	ListClients(ctx context.Context, includeInactive bool) ([]model.User, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	CountByRole(ctx context.Context, role string) (int64, error)
	DB() *gorm.DB
}

type userRepo struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepo{db: db} }

func (r *userRepo) DB() *gorm.DB { return r.db }

func (r *userRepo) Create(ctx context.Context, tx *gorm.DB, u *model.User) error {
	return tx.WithContext(ctx).Create(u).Error
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?) AND active = ?", email, true).
		First(&u).Error
	return &u, err
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.FindByIDTx(ctx, r.db, id)
}

func (r *userRepo) FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.User, error) {
	var u model.User
	err := tx.WithContext(ctx).Where("id = ?", id).First(&u).Error
	return &u, err
}

func (r *userRepo) ListClients(ctx context.Context, includeInactive bool) ([]model.User, error) {
	var users []model.User
	q := r.db.WithContext(ctx).Where("role = ?", model.RoleClient)
	if !includeInactive {
		q = q.Where("active = ?", true)
	}
	err := q.Order("name ASC").Find(&users).Error
	return users, err
}

func (r *userRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	delete(fields, "balance")
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepo) CountByRole(ctx context.Context, role string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("role = ?", role).Count(&n).Error
	return n, err
}
