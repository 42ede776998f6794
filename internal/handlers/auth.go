package handlers

import (
	"errors"
	"net/http"

	"techmarks/internal/logger"
	"techmarks/internal/middleware"
	"techmarks/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc *services.AuthService
	log logger.Logger
}

func NewAuthHandler(svc *services.AuthService, log logger.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: log}
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	Render(c, http.StatusOK, "auth/register.html", gin.H{"Title": "Sign up", "Name": "", "Email": ""})
}

func (h *AuthHandler) Register(c *gin.Context) {
	name := c.PostForm("name")
	email := c.PostForm("email")
	password := c.PostForm("password")

	user, err := h.svc.Register(c.Request.Context(), name, email, password)
	if err != nil {
		if fields, ok := validationFields(err); ok {
			Render(c, http.StatusUnprocessableEntity, "auth/register.html", gin.H{
				"Title":  "Sign up",
				"Errors": fields,
				"Name":   name,
				"Email":  email,
			})
			return
		}
		respondError(c, h.log, err)
		return
	}

	if err := h.startSession(c, user.ID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Redirect(http.StatusFound, "/bookmarks")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", gin.H{"Title": "Log in", "Email": ""})
}

func (h *AuthHandler) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	user, err := h.svc.Authenticate(c.Request.Context(), email, password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{
				"Title": "Log in",
				"Error": "Invalid email or password.",
				"Email": email,
			})
			return
		}
		respondError(c, h.log, err)
		return
	}

	if err := h.startSession(c, user.ID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Redirect(http.StatusFound, "/bookmarks")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		h.log.Warn("failed to clear session", logger.Error(err))
	}
	c.Redirect(http.StatusFound, "/bookmarks")
}

func (h *AuthHandler) startSession(c *gin.Context, userID uint) error {
	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, userID)
	return session.Save()
}
