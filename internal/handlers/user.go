package handlers

import (
	"net/http"

	"techmarks/internal/middleware"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	bookmarks *BookmarkHandler
}

func NewUserHandler(bookmarks *BookmarkHandler) *UserHandler {
	return &UserHandler{bookmarks: bookmarks}
}

// Profile GET /user/profile, the logged-in user's own bookmarks.
func (h *UserHandler) Profile(c *gin.Context) {
	user := middleware.CurrentUser(c)

	list, err := h.bookmarks.svc.ListByUser(c.Request.Context(), user, profileLimit)
	if err != nil {
		respondError(c, h.bookmarks.log, err)
		return
	}

	Render(c, http.StatusOK, "user/profile.html", gin.H{
		"Title": user.Name,
		"User":  user,
		"Rows":  h.bookmarks.rows(list, user),
	})
}
