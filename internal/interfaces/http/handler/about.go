package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yatube/backend/internal/interfaces/http/view"
)

// AboutHandler serves the static about pages
type AboutHandler struct {
	BaseHandler
}

// NewAboutHandler creates a new AboutHandler
func NewAboutHandler() *AboutHandler {
	return &AboutHandler{}
}

// Author shows the page about the author of the site
func (h *AboutHandler) Author(c *gin.Context) {
	h.Render(c, http.StatusOK, view.PageAbout, gin.H{"title": "Об авторе"})
}

// Tech shows the page about the technologies used
func (h *AboutHandler) Tech(c *gin.Context) {
	h.Render(c, http.StatusOK, view.PageTech, gin.H{"title": "Технологии"})
}
