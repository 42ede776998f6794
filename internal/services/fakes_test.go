package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"techmarks/internal/models"
	"techmarks/internal/repository"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fakeBookmarkStore struct {
	rows      map[uint]*models.Bookmark
	nextID    uint
	creates   int
	createErr error
}

func newFakeBookmarkStore() *fakeBookmarkStore {
	return &fakeBookmarkStore{rows: make(map[uint]*models.Bookmark), nextID: 1}
}

func (f *fakeBookmarkStore) FindByID(ctx context.Context, id uint) (*models.Bookmark, error) {
	b, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("find bookmark %d: %w", id, repository.ErrNotFound)
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookmarkStore) sorted(filter func(*models.Bookmark) bool) []models.Bookmark {
	var out []models.Bookmark
	for _, b := range f.rows {
		if filter(b) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (f *fakeBookmarkStore) ListPage(ctx context.Context, categoryID *uint, page, perPage int) ([]models.Bookmark, int64, error) {
	all := f.sorted(func(b *models.Bookmark) bool {
		return categoryID == nil || b.CategoryID == *categoryID
	})
	start := (page - 1) * perPage
	if start > len(all) {
		start = len(all)
	}
	end := start + perPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (f *fakeBookmarkStore) ListByUser(ctx context.Context, userID uint, limit int) ([]models.Bookmark, error) {
	all := f.sorted(func(b *models.Bookmark) bool { return b.UserID == userID })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeBookmarkStore) Create(ctx context.Context, b *models.Bookmark) error {
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	b.ID = f.nextID
	f.nextID++
	cp := *b
	f.rows[b.ID] = &cp
	return nil
}

func (f *fakeBookmarkStore) UpdateContent(ctx context.Context, id, categoryID uint, comment string) error {
	b, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	b.CategoryID = categoryID
	b.Comment = comment
	return nil
}

func (f *fakeBookmarkStore) Delete(ctx context.Context, id uint) error {
	if _, ok := f.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

// seed inserts a row directly, bypassing the service.
func (f *fakeBookmarkStore) seed(userID, categoryID uint, createdAt time.Time) *models.Bookmark {
	b := &models.Bookmark{
		URL:        fmt.Sprintf("https://example.com/%d", f.nextID),
		Comment:    "a comment that is long enough",
		UserID:     userID,
		CategoryID: categoryID,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	b.ID = f.nextID
	f.nextID++
	f.rows[b.ID] = b
	return b
}

type fakeCategoryStore struct {
	categories []models.Category
	bookmarks  *fakeBookmarkStore
}

func (f *fakeCategoryStore) FindByID(ctx context.Context, id uint) (*models.Category, error) {
	for _, c := range f.categories {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("find category %d: %w", id, repository.ErrNotFound)
}

func (f *fakeCategoryStore) Exists(ctx context.Context, id uint) (bool, error) {
	_, err := f.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (f *fakeCategoryStore) All(ctx context.Context) ([]models.Category, error) {
	return f.categories, nil
}

func (f *fakeCategoryStore) Top(ctx context.Context, excludeID *uint, limit int) ([]models.CategoryRank, error) {
	var ranks []models.CategoryRank
	for _, c := range f.categories {
		if excludeID != nil && c.ID == *excludeID {
			continue
		}
		n, _ := f.CountBookmarks(ctx, c.ID)
		ranks = append(ranks, models.CategoryRank{ID: c.ID, DisplayName: c.DisplayName, BookmarksCount: n})
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].BookmarksCount != ranks[j].BookmarksCount {
			return ranks[i].BookmarksCount > ranks[j].BookmarksCount
		}
		return ranks[i].ID < ranks[j].ID
	})
	if len(ranks) > limit {
		ranks = ranks[:limit]
	}
	return ranks, nil
}

func (f *fakeCategoryStore) CountBookmarks(ctx context.Context, id uint) (int64, error) {
	var n int64
	for _, b := range f.bookmarks.rows {
		if b.CategoryID == id {
			n++
		}
	}
	return n, nil
}

type fakeUserStore struct {
	users  []*models.User
	nextID uint
}

func (f *fakeUserStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, fmt.Errorf("find user by email: %w", repository.ErrNotFound)
}

func (f *fakeUserStore) Create(ctx context.Context, u *models.User) error {
	f.nextID++
	u.ID = f.nextID
	f.users = append(f.users, u)
	return nil
}

func (f *fakeUserStore) Top(ctx context.Context, limit int) ([]models.UserRank, error) {
	var ranks []models.UserRank
	for _, u := range f.users {
		ranks = append(ranks, models.UserRank{ID: u.ID, Name: u.Name})
	}
	if len(ranks) > limit {
		ranks = ranks[:limit]
	}
	return ranks, nil
}

type fakeFetcher struct {
	meta  *Metadata
	err   error
	calls []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, pageURL string) (*Metadata, error) {
	f.calls = append(f.calls, pageURL)
	if f.err != nil {
		return nil, f.err
	}
	return f.meta, nil
}
