package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yatube/backend/internal/application/identity"
	domainidentity "github.com/yatube/backend/internal/domain/identity"
	"github.com/yatube/backend/internal/domain/shared"
	"github.com/yatube/backend/internal/infrastructure/config"
	"github.com/yatube/backend/internal/interfaces/http/middleware"
	"github.com/yatube/backend/internal/interfaces/http/view"
)

// MsgInvalidLogin is shown when the username and password do not match
const MsgInvalidLogin = "Please enter a correct username and password. Note that both fields may be case-sensitive."

// Authenticator signs authors in and out
type Authenticator interface {
	Login(ctx context.Context, input identity.LoginInput) (*identity.LoginResult, error)
	Logout(ctx context.Context, input identity.LogoutInput) error
}

// LoginForm is the submitted login form
type LoginForm struct {
	Username string `form:"username" json:"username" binding:"required,max=150"`
	Password string `form:"password" json:"password" binding:"required"`
	Next     string `form:"next" json:"next"`
}

// AuthHandler serves the login and logout pages
type AuthHandler struct {
	BaseHandler
	auth   Authenticator
	cookie config.CookieConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth Authenticator, cookie config.CookieConfig) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		cookie: cookie,
	}
}

// LoginForm shows the login page
func (h *AuthHandler) LoginForm(c *gin.Context) {
	h.renderLogin(c, "", middleware.SafeNext(c.Query(middleware.NextParam)), shared.FieldErrors{})
}

// Login checks the credentials, sets the session cookie and sends the
// author on to next, or to the index. Failures show the form again.
func (h *AuthHandler) Login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderLogin(c, form.Username, middleware.SafeNext(form.Next), middleware.FieldErrorsFromBinding(err))
		return
	}
	next := middleware.SafeNext(form.Next)

	result, err := h.auth.Login(c.Request.Context(), identity.LoginInput{
		Username: strings.TrimSpace(form.Username),
		Password: form.Password,
		IP:       c.ClientIP(),
	})
	if err != nil {
		if errors.Is(err, domainidentity.ErrInvalidCredentials) {
			errs := shared.FieldErrors{}
			errs.Add("", MsgInvalidLogin)
			h.renderLogin(c, form.Username, next, errs)
			return
		}
		h.ServerError(c, err)
		return
	}

	h.setSessionCookie(c, result.Token, result.ExpiresAt)
	if next == "" {
		next = "/"
	}
	h.Redirect(c, next)
}

// Logout revokes the session token, clears the cookie and sends the
// visitor to the index. Anonymous visitors are simply redirected.
func (h *AuthHandler) Logout(c *gin.Context) {
	if claims, ok := middleware.GetSessionClaims(c); ok {
		userID, _ := uuid.Parse(claims.UserID)
		input := identity.LogoutInput{
			UserID:   userID,
			TokenJTI: claims.ID,
			TTL:      claims.GetRemainingTTL(),
		}
		if err := h.auth.Logout(c.Request.Context(), input); err != nil {
			h.ServerError(c, err)
			return
		}
	}

	h.clearSessionCookie(c)
	h.Redirect(c, "/")
}

func (h *AuthHandler) renderLogin(c *gin.Context, username, next string, errs shared.FieldErrors) {
	h.Render(c, http.StatusOK, view.PageLogin, gin.H{
		"title":    "Войти",
		"username": username,
		"next":     next,
		"errors":   errs,
	})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	c.SetSameSite(sameSiteMode(h.cookie.SameSite))
	c.SetCookie(h.cookieName(), token, maxAge, h.cookiePath(), h.cookie.Domain, h.cookie.Secure, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(sameSiteMode(h.cookie.SameSite))
	c.SetCookie(h.cookieName(), "", -1, h.cookiePath(), h.cookie.Domain, h.cookie.Secure, true)
}

func (h *AuthHandler) cookieName() string {
	if h.cookie.Name == "" {
		return config.DefaultCookieName
	}
	return h.cookie.Name
}

func (h *AuthHandler) cookiePath() string {
	if h.cookie.Path == "" {
		return "/"
	}
	return h.cookie.Path
}

func sameSiteMode(mode string) http.SameSite {
	switch strings.ToLower(mode) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
