package repositories

import (
	"context"

	"github.com/shashiranjanraj/heartscript/app/models"
	"github.com/shashiranjanraj/heartscript/pkg/orm"
	"gorm.io/gorm"
)

// UserRepository handles database operations for User.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail looks up a user by their email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := orm.On(r.db).WithContext(ctx).Model(&models.User{}).Where("email = ?", email).First(&user)
	return user, err
}

// FindByID looks up a user by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	err := orm.On(r.db).WithContext(ctx).Model(&models.User{}).Where("id = ?", id).First(&user)
	return user, err
}

func (r *UserRepository) Exists(ctx context.Context, id uint) (bool, error) {
	return orm.On(r.db).WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Exists()
}

func (r *UserRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	return orm.On(r.db).WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Exists()
}

// Create persists a new user record.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// UpdateProfile overwrites the editable contact fields. An empty image
// keeps the current one.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	fields := map[string]interface{}{
		"name":    user.Name,
		"phone":   user.Phone,
		"address": user.Address,
		"pincode": user.Pincode,
	}
	if user.ProfileImage != "" {
		fields["profile_image"] = user.ProfileImage
	}
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(fields).Error
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", hash).Error
}
