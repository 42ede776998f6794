package handlers

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"techmarks/internal/logger"
	"techmarks/internal/middleware"
	"techmarks/internal/models"
	"techmarks/internal/services"
	"techmarks/internal/utils"

	"github.com/gin-gonic/gin"
)

const profileLimit = 50

type BookmarkHandler struct {
	svc *services.BookmarkService
	log logger.Logger
}

func NewBookmarkHandler(svc *services.BookmarkService, log logger.Logger) *BookmarkHandler {
	return &BookmarkHandler{svc: svc, log: log}
}

// bookmarkRow is a bookmark prepared for the templates.
type bookmarkRow struct {
	ID           uint
	URL          string
	Title        string
	Description  string
	Thumbnail    string
	CommentHTML  template.HTML
	CategoryID   uint
	CategoryName string
	UserName     string
	CreatedAt    time.Time
	Editable     bool
	Owned        bool
}

func (h *BookmarkHandler) row(b *models.Bookmark, viewer *models.User) bookmarkRow {
	r := bookmarkRow{
		ID:           b.ID,
		URL:          b.URL,
		Title:        b.DisplayTitle(),
		CommentHTML:  utils.RenderMarkdown(b.Comment),
		CategoryID:   b.CategoryID,
		CategoryName: b.Category.DisplayName,
		UserName:     b.User.Name,
		CreatedAt:    b.CreatedAt,
		Editable:     h.svc.Editable(b),
		Owned:        viewer != nil && viewer.ID == b.UserID,
	}
	if b.PageDescription != nil {
		r.Description = *b.PageDescription
	}
	if b.PageThumbnailURL != nil {
		r.Thumbnail = *b.PageThumbnailURL
	}
	return r
}

func (h *BookmarkHandler) rows(bookmarks []models.Bookmark, viewer *models.User) []bookmarkRow {
	out := make([]bookmarkRow, 0, len(bookmarks))
	for i := range bookmarks {
		out = append(out, h.row(&bookmarks[i], viewer))
	}
	return out
}

// List GET /bookmarks
func (h *BookmarkHandler) List(c *gin.Context) {
	page := utils.PageParam(c.Query("page"))

	res, err := h.svc.List(c.Request.Context(), page)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	names := make([]string, 0, 5)
	for i, rank := range res.TopCategories {
		if i == 5 {
			break
		}
		names = append(names, rank.DisplayName)
	}

	Render(c, http.StatusOK, "bookmark/list.html", gin.H{
		"Title": "Bookmarks",
		"Description": "Bookmarks on software engineering topics, newest first. " +
			"Narrow them down to the field you care about, such as " + strings.Join(names, ", ") + ".",
		"Result":   res,
		"Rows":     h.rows(res.Bookmarks, middleware.CurrentUser(c)),
		"PageBase": "/bookmarks",
	})
}

// ListByCategory GET /bookmarks/category/:category_id
func (h *BookmarkHandler) ListByCategory(c *gin.Context) {
	id, ok := parseID(c.Param("category_id"))
	if !ok {
		RenderError(c, http.StatusNotFound, "The page you were looking for does not exist.")
		return
	}
	page := utils.PageParam(c.Query("page"))

	res, err := h.svc.ListByCategory(c.Request.Context(), id, page)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	name := res.Category.DisplayName
	Render(c, http.StatusOK, "bookmark/list.html", gin.H{
		"Title": name + " bookmarks",
		"Description": fmt.Sprintf("Bookmarks about %s, newest first. %d bookmarks have been posted so far.",
			name, res.CategoryTotal),
		"Result":   res,
		"Rows":     h.rows(res.Bookmarks, middleware.CurrentUser(c)),
		"PageBase": fmt.Sprintf("/bookmarks/category/%d", id),
	})
}

// ShowCreate GET /bookmark-create
func (h *BookmarkHandler) ShowCreate(c *gin.Context) {
	h.renderCreate(c, http.StatusOK, services.CreateInput{}, nil)
}

func (h *BookmarkHandler) renderCreate(c *gin.Context, code int, form services.CreateInput, errs map[string]string) {
	categories, err := h.svc.MasterCategories(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	Render(c, code, "bookmark/create.html", gin.H{
		"Title":      "New bookmark",
		"Categories": categories,
		"Form":       form,
		"Errors":     errs,
	})
}

// Create POST /bookmarks
// The input has no owner field; a user_id in the payload is ignored.
func (h *BookmarkHandler) Create(c *gin.Context) {
	var form services.CreateInput
	if err := c.ShouldBind(&form); err != nil {
		h.renderCreate(c, http.StatusUnprocessableEntity, form, bindErrors(err))
		return
	}

	_, err := h.svc.Create(c.Request.Context(), middleware.CurrentUser(c), form)
	if err != nil {
		if fields, ok := validationFields(err); ok {
			h.renderCreate(c, http.StatusUnprocessableEntity, form, fields)
			return
		}
		respondError(c, h.log, err)
		return
	}

	c.Redirect(http.StatusFound, "/bookmarks")
}

// ShowEdit GET /bookmark-edit/:id
func (h *BookmarkHandler) ShowEdit(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		RenderError(c, http.StatusNotFound, "The page you were looking for does not exist.")
		return
	}

	b, err := h.svc.GetForEdit(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.renderEdit(c, http.StatusOK, b, services.UpdateInput{Comment: b.Comment, CategoryID: b.CategoryID}, nil)
}

func (h *BookmarkHandler) renderEdit(c *gin.Context, code int, b *models.Bookmark, form services.UpdateInput, errs map[string]string) {
	categories, err := h.svc.EditCategories(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	categories = withCategory(categories, b.Category)

	Render(c, code, "bookmark/edit.html", gin.H{
		"Title":      "Edit bookmark",
		"Bookmark":   h.row(b, middleware.CurrentUser(c)),
		"Categories": categories,
		"Form":       form,
		"Errors":     errs,
	})
}

// withCategory makes sure the bookmark's current category can be selected
// even when it is not among the most used ones.
func withCategory(ranks []models.CategoryRank, current models.Category) []models.CategoryRank {
	if current.ID == 0 {
		return ranks
	}
	for _, r := range ranks {
		if r.ID == current.ID {
			return ranks
		}
	}
	return append(ranks, models.CategoryRank{ID: current.ID, DisplayName: current.DisplayName})
}

// Update PUT /bookmarks/:id (also accepted as POST for plain HTML forms)
func (h *BookmarkHandler) Update(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		RenderError(c, http.StatusNotFound, "The page you were looking for does not exist.")
		return
	}
	actor := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	// A malformed form is reported only after the service has run its
	// permission checks, which come first.
	var form services.UpdateInput
	bindErr := c.ShouldBind(&form)
	if bindErr != nil {
		form = services.UpdateInput{Comment: form.Comment}
	}

	_, err := h.svc.Update(ctx, actor, id, form)
	if err != nil {
		fields, ok := validationFields(err)
		if !ok {
			respondError(c, h.log, err)
			return
		}
		if bindErr != nil {
			for k, v := range bindErrors(bindErr) {
				fields[k] = v
			}
		}
		b, gerr := h.svc.GetForEdit(ctx, actor, id)
		if gerr != nil {
			respondError(c, h.log, gerr)
			return
		}
		h.renderEdit(c, http.StatusUnprocessableEntity, b, form, fields)
		return
	}

	c.Redirect(http.StatusFound, "/bookmarks")
}

// Delete DELETE /bookmarks/:id (also POST /bookmarks/:id/delete)
func (h *BookmarkHandler) Delete(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		RenderError(c, http.StatusNotFound, "The page you were looking for does not exist.")
		return
	}

	if err := h.svc.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.Redirect(http.StatusFound, "/user/profile")
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
