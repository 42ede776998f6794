package repository

import (
	"context"
	"fmt"
	"techmarks/internal/models"

	"gorm.io/gorm"
)

// BookmarkRepository 书签表的数据访问
type BookmarkRepository struct {
	db *gorm.DB
}

func NewBookmarkRepository(db *gorm.DB) *BookmarkRepository {
	return &BookmarkRepository{db: db}
}

// FindByID loads one bookmark with its category and owner.
func (r *BookmarkRepository) FindByID(ctx context.Context, id uint) (*models.Bookmark, error) {
	var b models.Bookmark
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("User").
		First(&b, id).Error
	if err != nil {
		return nil, wrapFind(fmt.Sprintf("find bookmark %d", id), err)
	}
	return &b, nil
}

// ListPage returns one page ordered by id descending, optionally restricted
// to a category, together with the total row count for that filter.
func (r *BookmarkRepository) ListPage(ctx context.Context, categoryID *uint, page, perPage int) ([]models.Bookmark, int64, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * perPage

	base := r.db.WithContext(ctx).Model(&models.Bookmark{})
	if categoryID != nil {
		base = base.Where("category_id = ?", *categoryID)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count bookmarks: %w", err)
	}

	var bookmarks []models.Bookmark
	err := base.Session(&gorm.Session{}).
		Preload("Category").
		Preload("User").
		Order("id DESC").
		Limit(perPage).
		Offset(offset).
		Find(&bookmarks).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list bookmarks: %w", err)
	}

	return bookmarks, total, nil
}

// ListByUser returns the newest bookmarks posted by one user.
func (r *BookmarkRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]models.Bookmark, error) {
	var bookmarks []models.Bookmark
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&bookmarks).Error
	if err != nil {
		return nil, fmt.Errorf("list bookmarks of user %d: %w", userID, err)
	}
	return bookmarks, nil
}

// Create inserts a single row. Associations are not upserted.
func (r *BookmarkRepository) Create(ctx context.Context, b *models.Bookmark) error {
	if err := r.db.WithContext(ctx).Omit("Category", "User").Create(b).Error; err != nil {
		return fmt.Errorf("insert bookmark: %w", err)
	}
	return nil
}

// UpdateContent changes the two mutable columns and nothing else.
func (r *BookmarkRepository) UpdateContent(ctx context.Context, id, categoryID uint, comment string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Bookmark{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"category_id": categoryID,
			"comment":     comment,
		})
	if res.Error != nil {
		return fmt.Errorf("update bookmark %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update bookmark %d: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes the row permanently.
func (r *BookmarkRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Bookmark{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete bookmark %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete bookmark %d: %w", id, ErrNotFound)
	}
	return nil
}
