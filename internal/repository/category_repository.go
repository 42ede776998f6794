package repository

import (
	"context"
	"errors"
	"fmt"
	"techmarks/internal/models"

	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) FindByID(ctx context.Context, id uint) (*models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, wrapFind(fmt.Sprintf("find category %d", id), err)
	}
	return &c, nil
}

func (r *CategoryRepository) Exists(ctx context.Context, id uint) (bool, error) {
	_, err := r.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// All returns every category ordered by id.
func (r *CategoryRepository) All(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Top ranks categories by bookmark count, ties broken by ascending id.
// Categories without bookmarks are included with a zero count.
func (r *CategoryRepository) Top(ctx context.Context, excludeID *uint, limit int) ([]models.CategoryRank, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Select("categories.id, categories.display_name, COUNT(bookmarks.id) AS bookmarks_count").
		Joins("LEFT JOIN bookmarks ON bookmarks.category_id = categories.id").
		Group("categories.id, categories.display_name").
		Order("bookmarks_count DESC").
		Order("categories.id ASC").
		Limit(limit)
	if excludeID != nil {
		q = q.Where("categories.id <> ?", *excludeID)
	}

	var ranks []models.CategoryRank
	if err := q.Scan(&ranks).Error; err != nil {
		return nil, fmt.Errorf("rank categories: %w", err)
	}
	return ranks, nil
}

func (r *CategoryRepository) CountBookmarks(ctx context.Context, id uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Bookmark{}).
		Where("category_id = ?", id).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count bookmarks of category %d: %w", id, err)
	}
	return count, nil
}
