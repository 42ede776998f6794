package repository

import (
	"context"
	"fmt"
	"techmarks/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, wrapFind(fmt.Sprintf("find user %d", id), err)
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, wrapFind("find user by email", err)
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// Top ranks users by bookmark count. Ties fall back to ascending id so the
// order is stable between requests.
func (r *UserRepository) Top(ctx context.Context, limit int) ([]models.UserRank, error) {
	var ranks []models.UserRank
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("users.id, users.name, COUNT(bookmarks.id) AS bookmarks_count").
		Joins("LEFT JOIN bookmarks ON bookmarks.user_id = users.id").
		Group("users.id, users.name").
		Order("bookmarks_count DESC").
		Order("users.id ASC").
		Limit(limit).
		Scan(&ranks).Error
	if err != nil {
		return nil, fmt.Errorf("rank users: %w", err)
	}
	return ranks, nil
}
