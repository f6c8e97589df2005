package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yatube/backend/internal/domain/shared"
	"github.com/yatube/backend/internal/infrastructure/logger"
	"github.com/yatube/backend/internal/interfaces/http/dto"
	"github.com/yatube/backend/internal/interfaces/http/middleware"
	"github.com/yatube/backend/internal/interfaces/http/view"
	"go.uber.org/zap"
)

// DefaultLoginURL is where anonymous visitors are sent to sign in
const DefaultLoginURL = "/auth/login/"

// Offered content types. Browsers get HTML, API clients ask for JSON.
var offered = []string{gin.MIMEHTML, gin.MIMEJSON}

// BaseHandler provides common handler utilities
type BaseHandler struct {
	LoginURL string
}

func (h *BaseHandler) loginURL() string {
	if h.LoginURL == "" {
		return DefaultLoginURL
	}
	return h.LoginURL
}

// Render answers with the named page, or with data as JSON when the client
// prefers it. Every page receives the title, the current user, the request
// path and the request ID.
func (h *BaseHandler) Render(c *gin.Context, status int, name string, data gin.H) {
	page := gin.H{
		"title":        "",
		"current_user": middleware.GetSessionUsername(c),
		"request_path": c.Request.URL.Path,
		"request_id":   middleware.GetRequestID(c),
	}
	for k, v := range data {
		page[k] = v
	}

	c.Negotiate(status, gin.Negotiate{
		Offered:  offered,
		HTMLName: name,
		HTMLData: page,
		JSONData: dto.NewSuccessResponse(data),
	})
}

// Redirect sends a 302 to location
func (h *BaseHandler) Redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}

// RedirectToLogin sends the visitor to the login page, coming back to the current page afterwards
func (h *BaseHandler) RedirectToLogin(c *gin.Context) {
	h.Redirect(c, middleware.LoginRedirectURL(h.loginURL(), c.Request.URL.RequestURI()))
}

// NotFound answers 404
func (h *BaseHandler) NotFound(c *gin.Context) {
	h.errorPage(c, http.StatusNotFound, view.PageNotFound, dto.ErrCodeNotFound, "Page not found")
}

// ServerError logs err and answers 500 without exposing it
func (h *BaseHandler) ServerError(c *gin.Context, err error) {
	logger.L(c.Request.Context()).Error("Request failed",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	_ = c.Error(err)
	h.errorPage(c, http.StatusInternalServerError, view.PageServerErr, dto.ErrCodeInternal, "An unexpected error occurred")
}

func (h *BaseHandler) errorPage(c *gin.Context, status int, name, code, message string) {
	c.Negotiate(status, gin.Negotiate{
		Offered:  offered,
		HTMLName: name,
		HTMLData: gin.H{
			"title":        "",
			"current_user": middleware.GetSessionUsername(c),
			"request_path": c.Request.URL.Path,
			"request_id":   middleware.GetRequestID(c),
			"status":       status,
			"message":      message,
		},
		JSONData: dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)),
	})
}

// HandleError converts service errors to responses through the dto error
// code table. Validation errors are not handled here: pages re-render their forms.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		h.ServerError(c, err)
		return
	}

	code := dto.NormalizeErrorCode(domainErr.Code)
	switch status := dto.GetHTTPStatus(code); status {
	case http.StatusNotFound:
		h.NotFound(c)
	case http.StatusUnauthorized:
		h.RedirectToLogin(c)
	case http.StatusInternalServerError:
		h.ServerError(c, err)
	default:
		h.errorPage(c, status, view.PageError, code, domainErr.Message)
	}
}

// NoRoute answers unknown paths
func (h *BaseHandler) NoRoute(c *gin.Context) {
	h.NotFound(c)
}
