package handlers

import (
	"errors"
	"net/http"
	"strings"

	"techmarks/internal/logger"
	"techmarks/internal/middleware"
	"techmarks/internal/services"

	"github.com/gin-gonic/gin"
)

var siteURL string

// SetSiteURL sets the absolute base used for canonical links.
func SetSiteURL(u string) {
	siteURL = strings.TrimRight(u, "/")
}

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if user := middleware.CurrentUser(c); user != nil {
		obj["CurrentUser"] = user
	}
	obj["CurrentPath"] = c.Request.URL.Path
	obj["SiteURL"] = siteURL

	c.HTML(code, name, obj)
}

// Error helper
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Code": code, "Error": message})
}

// respondError maps a service error to a response. Anything unexpected is
// logged and answered with 500.
func respondError(c *gin.Context, log logger.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		c.Redirect(http.StatusFound, "/login")
	case errors.Is(err, services.ErrNotFound):
		RenderError(c, http.StatusNotFound, "The page you were looking for does not exist.")
	case errors.Is(err, services.ErrForbidden):
		RenderError(c, http.StatusForbidden, "You are not allowed to change this bookmark.")
	case errors.Is(err, services.ErrTimeWindowExpired):
		RenderError(c, http.StatusUnprocessableEntity, "Bookmarks can only be changed within 24 hours of posting.")
	case errors.Is(err, services.ErrValidation):
		RenderError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		_ = c.Error(err)
		log.Error("request failed",
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Error(err),
		)
		RenderError(c, http.StatusInternalServerError, "Something went wrong. Please try again later.")
	}
}

// bindErrors reports a form that could not be decoded at all, such as a
// non-numeric category. Field rules are checked by the services.
func bindErrors(err error) map[string]string {
	return map[string]string{"form": "The submitted form could not be read."}
}

// validationFields extracts the per-field messages of a service error.
func validationFields(err error) (map[string]string, bool) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields, true
	}
	return nil, false
}
