package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appposts "github.com/yatube/backend/internal/application/posts"
	"github.com/yatube/backend/internal/domain/posts"
	"github.com/yatube/backend/internal/domain/shared"
	"github.com/yatube/backend/internal/interfaces/http/middleware"
	"github.com/yatube/backend/internal/interfaces/http/view"
)

// PageParam is the query parameter selecting a listing page
const PageParam = "page"

// FeedReader serves the listings and the post detail
type FeedReader interface {
	Index(ctx context.Context, page string) (shared.Page[appposts.PostResponse], error)
	GroupFeed(ctx context.Context, slug, page string) (*appposts.GroupFeedResult, error)
	ProfileFeed(ctx context.Context, username, page string) (*appposts.ProfileFeedResult, error)
	PostDetail(ctx context.Context, id int64) (*appposts.PostDetailResult, error)
}

// PostWriter creates and edits posts
type PostWriter interface {
	Create(ctx context.Context, authorID uuid.UUID, input appposts.PostInput) (*appposts.PostResponse, error)
	GetForEdit(ctx context.Context, requesterID uuid.UUID, postID int64) (*appposts.PostResponse, error)
	Edit(ctx context.Context, requesterID uuid.UUID, postID int64, input appposts.PostInput) (*appposts.PostResponse, error)
}

// GroupLister lists the groups offered by the post form
type GroupLister interface {
	List(ctx context.Context) ([]appposts.GroupResponse, error)
}

// PostHandler serves the blog pages
type PostHandler struct {
	BaseHandler
	feeds  FeedReader
	posts  PostWriter
	groups GroupLister
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(feeds FeedReader, writer PostWriter, groups GroupLister) *PostHandler {
	return &PostHandler{
		feeds:  feeds,
		posts:  writer,
		groups: groups,
	}
}

// Index shows every post, newest first
func (h *PostHandler) Index(c *gin.Context) {
	page, err := h.feeds.Index(c.Request.Context(), c.Query(PageParam))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Render(c, http.StatusOK, view.PageIndex, gin.H{
		"title":    "Последние обновления на сайте",
		"page_obj": page,
	})
}

// GroupPosts shows the posts of one group
func (h *PostHandler) GroupPosts(c *gin.Context) {
	result, err := h.feeds.GroupFeed(c.Request.Context(), c.Param("slug"), c.Query(PageParam))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Render(c, http.StatusOK, view.PageGroupList, gin.H{
		"title":    "Записи сообщества " + result.Group.Title,
		"group":    result.Group,
		"page_obj": result.Page,
	})
}

// Profile shows the posts of one author
func (h *PostHandler) Profile(c *gin.Context) {
	result, err := h.feeds.ProfileFeed(c.Request.Context(), c.Param("username"), c.Query(PageParam))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Render(c, http.StatusOK, view.PageProfile, gin.H{
		"title":       "Профайл пользователя " + result.Author.Username,
		"author":      result.Author,
		"posts_count": result.PostsCount,
		"page_obj":    result.Page,
	})
}

// PostDetail shows a single post
func (h *PostHandler) PostDetail(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}
	result, err := h.feeds.PostDetail(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Render(c, http.StatusOK, view.PagePostDetail, gin.H{
		"title":              "Пост " + result.Post.Summary,
		"post":               result.Post,
		"author_posts_count": result.AuthorPostsCount,
	})
}

// CreateForm shows an empty post form
func (h *PostHandler) CreateForm(c *gin.Context) {
	h.renderForm(c, appposts.PostInput{}, nil, nil)
}

// Create publishes a post and sends its author to their profile.
// An invalid form is shown again with its errors and nothing is saved.
func (h *PostHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetSessionUserID(c)
	if !ok {
		h.RedirectToLogin(c)
		return
	}

	input, errs := bindPostInput(c)
	if errs != nil {
		h.renderForm(c, input, errs, nil)
		return
	}

	post, err := h.posts.Create(c.Request.Context(), userID, input)
	if err != nil {
		var ve *shared.ValidationError
		if errors.As(err, &ve) {
			h.renderForm(c, input, ve.Fields, nil)
			return
		}
		h.HandleError(c, err)
		return
	}
	h.Redirect(c, profileURL(post.Author.Username))
}

// EditForm shows the post form filled with the stored post.
// Anyone but the author is sent back to the post.
func (h *PostHandler) EditForm(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}
	userID, ok := middleware.GetSessionUserID(c)
	if !ok {
		h.RedirectToLogin(c)
		return
	}

	post, err := h.posts.GetForEdit(c.Request.Context(), userID, id)
	if err != nil {
		h.handleEditError(c, id, err)
		return
	}
	h.renderForm(c, appposts.InputFromPost(*post), nil, post)
}

// Edit saves the new text and group and sends the author to the post
func (h *PostHandler) Edit(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}
	userID, ok := middleware.GetSessionUserID(c)
	if !ok {
		h.RedirectToLogin(c)
		return
	}

	input, errs := bindPostInput(c)
	if errs != nil {
		h.reRenderEdit(c, userID, id, input, errs)
		return
	}

	_, err := h.posts.Edit(c.Request.Context(), userID, id, input)
	if err != nil {
		var ve *shared.ValidationError
		if errors.As(err, &ve) {
			h.reRenderEdit(c, userID, id, input, ve.Fields)
			return
		}
		h.handleEditError(c, id, err)
		return
	}
	h.Redirect(c, postURL(id))
}

// reRenderEdit shows the edit form again. The stored post is reloaded so
// that only its author ever sees it.
func (h *PostHandler) reRenderEdit(c *gin.Context, userID uuid.UUID, id int64, input appposts.PostInput, errs shared.FieldErrors) {
	post, err := h.posts.GetForEdit(c.Request.Context(), userID, id)
	if err != nil {
		h.handleEditError(c, id, err)
		return
	}
	h.renderForm(c, input, errs, post)
}

func (h *PostHandler) handleEditError(c *gin.Context, id int64, err error) {
	if errors.Is(err, posts.ErrNotAuthor) {
		h.Redirect(c, postURL(id))
		return
	}
	h.HandleError(c, err)
}

// renderForm shows the post form. post is nil when creating.
func (h *PostHandler) renderForm(c *gin.Context, input appposts.PostInput, errs shared.FieldErrors, post *appposts.PostResponse) {
	groups, err := h.groups.List(c.Request.Context())
	if err != nil {
		h.ServerError(c, err)
		return
	}

	data := gin.H{
		"form":    appposts.NewPostForm(input, errs, groups),
		"is_edit": post != nil,
	}
	if post != nil {
		data["title"] = "Редактировать пост"
		data["post"] = *post
	} else {
		data["title"] = "Новый пост"
	}
	h.Render(c, http.StatusOK, view.PageCreatePost, data)
}

// postID parses the post_id path segment. Anything but a positive
// integer is answered with 404.
func (h *PostHandler) postID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("post_id"), 10, 64)
	if err != nil || id <= 0 {
		h.NotFound(c)
		return 0, false
	}
	return id, true
}

// bindPostInput reads the form. A body that cannot be read yields a
// form-wide error.
func bindPostInput(c *gin.Context) (appposts.PostInput, shared.FieldErrors) {
	var input appposts.PostInput
	if err := c.ShouldBind(&input); err != nil {
		return input, middleware.FieldErrorsFromBinding(err)
	}
	return input, nil
}

func profileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

func postURL(id int64) string {
	return "/posts/" + strconv.FormatInt(id, 10) + "/"
}
