package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"techmarks/internal/logger"
	"techmarks/internal/models"
	"techmarks/internal/repository"
)

const (
	PerPage            = 10
	TopCategoriesLimit = 10
	TopUsersLimit      = 10
)

// BookmarkStore is the persistence the bookmark workflow needs.
type BookmarkStore interface {
	FindByID(ctx context.Context, id uint) (*models.Bookmark, error)
	ListPage(ctx context.Context, categoryID *uint, page, perPage int) ([]models.Bookmark, int64, error)
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.Bookmark, error)
	Create(ctx context.Context, b *models.Bookmark) error
	UpdateContent(ctx context.Context, id, categoryID uint, comment string) error
	Delete(ctx context.Context, id uint) error
}

type CategoryStore interface {
	FindByID(ctx context.Context, id uint) (*models.Category, error)
	Exists(ctx context.Context, id uint) (bool, error)
	All(ctx context.Context) ([]models.Category, error)
	Top(ctx context.Context, excludeID *uint, limit int) ([]models.CategoryRank, error)
	CountBookmarks(ctx context.Context, id uint) (int64, error)
}

type UserStore interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	Top(ctx context.Context, limit int) ([]models.UserRank, error)
}

// CreateInput is what a user submits for a new bookmark. The owner is
// always the acting user and is not part of the input.
type CreateInput struct {
	URL        string `form:"url" validate:"required,http_url"`
	Comment    string `form:"comment" validate:"required,min=10,max=1000"`
	CategoryID uint   `form:"category" validate:"required"`
}

// UpdateInput holds the only two fields that may change after creation.
type UpdateInput struct {
	Comment    string `form:"comment" validate:"required,min=10,max=1000"`
	CategoryID uint   `form:"category" validate:"required"`
}

// ListResult is one page of bookmarks plus the sidebar rankings.
type ListResult struct {
	Bookmarks  []models.Bookmark
	Page       int
	PerPage    int
	Total      int64
	TotalPages int

	// set on category pages only
	Category      *models.Category
	CategoryTotal int64

	TopCategories []models.CategoryRank
	TopUsers      []models.UserRank
}

func (r *ListResult) HasPrev() bool { return r.Page > 1 }
func (r *ListResult) HasNext() bool { return r.Page < r.TotalPages }

type BookmarkOption func(*BookmarkService)

// WithClock replaces time.Now, mainly for tests around the edit window.
func WithClock(now func() time.Time) BookmarkOption {
	return func(s *BookmarkService) {
		s.now = now
	}
}

// BookmarkService 书签的创建、编辑、删除与列表
type BookmarkService struct {
	bookmarks  BookmarkStore
	categories CategoryStore
	users      UserStore
	fetcher    MetadataFetcher
	log        logger.Logger
	now        func() time.Time
}

func NewBookmarkService(bookmarks BookmarkStore, categories CategoryStore, users UserStore, fetcher MetadataFetcher, log logger.Logger, opts ...BookmarkOption) *BookmarkService {
	s := &BookmarkService{
		bookmarks:  bookmarks,
		categories: categories,
		users:      users,
		fetcher:    fetcher,
		log:        log,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Editable reports whether b is still inside its edit window right now.
func (s *BookmarkService) Editable(b *models.Bookmark) bool {
	return b.EditableAt(s.now())
}

// Create validates the input, enriches it with page metadata and stores it
// with a single insert. Nothing is written when the metadata fetch fails.
func (s *BookmarkService) Create(ctx context.Context, actor *models.User, in CreateInput) (*models.Bookmark, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	in.URL = strings.TrimSpace(in.URL)
	in.Comment = strings.TrimSpace(in.Comment)

	verr := newValidationError()
	if err := validateStruct(in, verr); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, in.CategoryID, verr); err != nil {
		return nil, err
	}
	if verr.HasErrors() {
		return nil, verr
	}

	meta, err := s.fetcher.Fetch(ctx, in.URL)
	if err != nil {
		s.log.Warn("metadata fetch failed",
			logger.String("url", in.URL),
			logger.Uint("user_id", actor.ID),
			logger.Error(err),
		)
		verr.Add("url", "could not retrieve page information from this URL")
		return nil, verr
	}

	now := s.now()
	b := &models.Bookmark{
		URL:        in.URL,
		Comment:    in.Comment,
		CategoryID: in.CategoryID,
		UserID:     actor.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if meta != nil {
		b.PageTitle = meta.Title
		b.PageDescription = meta.Description
		b.PageThumbnailURL = meta.ThumbnailURL
	}

	if err := s.bookmarks.Create(ctx, b); err != nil {
		return nil, err
	}

	s.log.Info("bookmark created", logger.Uint("id", b.ID), logger.Uint("user_id", actor.ID))
	return b, nil
}

// GetForEdit loads a bookmark for the edit form. Only the owner may open it;
// the time window is enforced on submit.
func (s *BookmarkService) GetForEdit(ctx context.Context, actor *models.User, id uint) (*models.Bookmark, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	b, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != actor.ID {
		return nil, ErrForbidden
	}
	return b, nil
}

// Update changes comment and category. Checks run in a fixed order:
// authentication, existence, edit window, ownership, then the input.
func (s *BookmarkService) Update(ctx context.Context, actor *models.User, id uint, in UpdateInput) (*models.Bookmark, error) {
	b, err := s.loadMutable(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	in.Comment = strings.TrimSpace(in.Comment)

	verr := newValidationError()
	if err := validateStruct(in, verr); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, in.CategoryID, verr); err != nil {
		return nil, err
	}
	if verr.HasErrors() {
		return nil, verr
	}

	if err := s.bookmarks.UpdateContent(ctx, b.ID, in.CategoryID, in.Comment); err != nil {
		return nil, mapStoreErr(err)
	}

	b.Comment = in.Comment
	if b.CategoryID != in.CategoryID {
		b.CategoryID = in.CategoryID
		b.Category = models.Category{}
	}

	s.log.Info("bookmark updated", logger.Uint("id", b.ID), logger.Uint("user_id", actor.ID))
	return b, nil
}

// Delete removes the bookmark permanently, under the same checks as Update.
func (s *BookmarkService) Delete(ctx context.Context, actor *models.User, id uint) error {
	b, err := s.loadMutable(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.bookmarks.Delete(ctx, b.ID); err != nil {
		return mapStoreErr(err)
	}
	s.log.Info("bookmark deleted", logger.Uint("id", b.ID), logger.Uint("user_id", actor.ID))
	return nil
}

// List returns a page of all bookmarks, newest first.
func (s *BookmarkService) List(ctx context.Context, page int) (*ListResult, error) {
	res, err := s.page(ctx, nil, page)
	if err != nil {
		return nil, err
	}
	if res.TopCategories, err = s.categories.Top(ctx, nil, TopCategoriesLimit); err != nil {
		return nil, err
	}
	if res.TopUsers, err = s.users.Top(ctx, TopUsersLimit); err != nil {
		return nil, err
	}
	return res, nil
}

// ListByCategory is List restricted to one category. The category itself is
// left out of the category ranking.
func (s *BookmarkService) ListByCategory(ctx context.Context, categoryID uint, page int) (*ListResult, error) {
	category, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	res, err := s.page(ctx, &category.ID, page)
	if err != nil {
		return nil, err
	}
	res.Category = category
	if res.CategoryTotal, err = s.categories.CountBookmarks(ctx, category.ID); err != nil {
		return nil, err
	}
	if res.TopCategories, err = s.categories.Top(ctx, &category.ID, TopCategoriesLimit); err != nil {
		return nil, err
	}
	if res.TopUsers, err = s.users.Top(ctx, TopUsersLimit); err != nil {
		return nil, err
	}
	return res, nil
}

// MasterCategories lists every category for the create form.
func (s *BookmarkService) MasterCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.All(ctx)
}

// EditCategories is the category choice offered on the edit form: the most
// used categories.
func (s *BookmarkService) EditCategories(ctx context.Context) ([]models.CategoryRank, error) {
	return s.categories.Top(ctx, nil, TopCategoriesLimit)
}

// ListByUser returns the actor's own bookmarks for the profile page.
func (s *BookmarkService) ListByUser(ctx context.Context, actor *models.User, limit int) ([]models.Bookmark, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	return s.bookmarks.ListByUser(ctx, actor.ID, limit)
}

func (s *BookmarkService) page(ctx context.Context, categoryID *uint, page int) (*ListResult, error) {
	if page < 1 {
		page = 1
	}
	bookmarks, total, err := s.bookmarks.ListPage(ctx, categoryID, page, PerPage)
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Bookmarks:  bookmarks,
		Page:       page,
		PerPage:    PerPage,
		Total:      total,
		TotalPages: int((total + PerPage - 1) / PerPage),
	}, nil
}

// loadMutable applies the shared checks of update and delete.
func (s *BookmarkService) loadMutable(ctx context.Context, actor *models.User, id uint) (*models.Bookmark, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	b, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.EditableAt(s.now()) {
		return nil, ErrTimeWindowExpired
	}
	if b.UserID != actor.ID {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *BookmarkService) find(ctx context.Context, id uint) (*models.Bookmark, error) {
	b, err := s.bookmarks.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return b, nil
}

// checkCategory adds a message when the category does not exist. A missing
// id is already reported by the struct rules.
func (s *BookmarkService) checkCategory(ctx context.Context, id uint, verr *ValidationError) error {
	if id == 0 {
		return nil
	}
	ok, err := s.categories.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		verr.Add("category", "selected category does not exist")
	}
	return nil
}

func mapStoreErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
